// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package test

import (
	"fmt"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
)

// MovieFixture is a compact description of a catalog movie that expands into
// a full raw record.
type MovieFixture struct {
	ID          int
	Title       string
	Genres      []string
	Cast        []string
	Director    string
	Collection  string
	Budget      float64
	Revenue     float64
	VoteCount   float64
	VoteAverage float64
	Popularity  float64
	Runtime     float64
	ReleaseDate string
	Status      string
}

// Raw expands the fixture into a raw record shaped like a catalog response
// with credits appended.
func (f MovieFixture) Raw() model.RawRecord {
	status := f.Status
	if status == "" {
		status = model.ReleasedStatus
	}
	crew := []any{map[string]any{"name": "Jane Composer", "job": "Original Music Composer"}}
	if f.Director != "" {
		crew = append(crew, map[string]any{"name": f.Director, "job": "Director"})
	}
	var collection any
	if f.Collection != "" {
		collection = map[string]any{"id": 1000 + f.ID, "name": f.Collection}
	}
	return model.RawRecord{
		"adult":                 false,
		"backdrop_path":         fmt.Sprintf("/backdrop-%d.jpg", f.ID),
		"belongs_to_collection": collection,
		"budget":                f.Budget,
		"genres":                Names(f.Genres...),
		"homepage":              "https://example.com/" + fmt.Sprint(f.ID),
		"id":                    float64(f.ID),
		"imdb_id":               fmt.Sprintf("tt%07d", f.ID),
		"original_language":     "en",
		"original_title":        f.Title,
		"overview":              "Overview of " + f.Title,
		"popularity":            f.Popularity,
		"poster_path":           fmt.Sprintf("/poster-%d.jpg", f.ID),
		"production_companies":  Names("Example Studios"),
		"production_countries":  Names("United States of America"),
		"release_date":          f.ReleaseDate,
		"revenue":               f.Revenue,
		"runtime":               f.Runtime,
		"spoken_languages":      Names("English"),
		"status":                status,
		"tagline":               "Tagline of " + f.Title,
		"title":                 f.Title,
		"video":                 false,
		"vote_average":          f.VoteAverage,
		"vote_count":            f.VoteCount,
		"credits": map[string]any{
			"cast": Names(f.Cast...),
			"crew": crew,
		},
	}
}

// Names builds a list of {"name": ...} maps.
func Names(names ...string) []any {
	out := make([]any, len(names))
	for i, n := range names {
		out[i] = map[string]any{"name": n}
	}
	return out
}

// Catalog is a small, realistic catalog used by query and report tests.
var Catalog = []MovieFixture{
	{ID: 101, Title: "Armageddon", Genres: []string{"Action", "Thriller", "Science Fiction", "Adventure"},
		Cast: []string{"Bruce Willis", "Ben Affleck", "Billy Bob Thornton"}, Director: "Michael Bay",
		Budget: 140_000_000, Revenue: 553_700_000, VoteCount: 7000, VoteAverage: 6.8, Popularity: 50, Runtime: 151, ReleaseDate: "1998-07-01"},
	{ID: 102, Title: "The Fifth Element", Genres: []string{"Science Fiction", "Action", "Adventure"},
		Cast: []string{"Bruce Willis", "Milla Jovovich", "Gary Oldman"}, Director: "Luc Besson",
		Budget: 90_000_000, Revenue: 263_900_000, VoteCount: 10000, VoteAverage: 7.5, Popularity: 40, Runtime: 126, ReleaseDate: "1997-05-02"},
	{ID: 103, Title: "Pulp Fiction", Genres: []string{"Thriller", "Crime"},
		Cast: []string{"John Travolta", "Samuel L. Jackson", "Uma Thurman", "Bruce Willis"}, Director: "Quentin Tarantino",
		Budget: 8_000_000, Revenue: 213_900_000, VoteCount: 27000, VoteAverage: 8.5, Popularity: 80, Runtime: 154, ReleaseDate: "1994-09-10"},
	{ID: 104, Title: "Kill Bill: Vol. 1", Genres: []string{"Action", "Crime"},
		Cast: []string{"Uma Thurman", "Lucy Liu", "Vivica A. Fox"}, Director: "Quentin Tarantino", Collection: "Kill Bill Collection",
		Budget: 30_000_000, Revenue: 180_900_000, VoteCount: 17000, VoteAverage: 8.0, Popularity: 60, Runtime: 111, ReleaseDate: "2003-10-10"},
	{ID: 105, Title: "Kill Bill: Vol. 2", Genres: []string{"Action", "Crime", "Thriller"},
		Cast: []string{"Uma Thurman", "David Carradine", "Michael Madsen"}, Director: "Quentin Tarantino", Collection: "Kill Bill Collection",
		Budget: 30_000_000, Revenue: 152_200_000, VoteCount: 12000, VoteAverage: 7.9, Popularity: 55, Runtime: 137, ReleaseDate: "2004-04-16"},
	{ID: 106, Title: "Avengers: Endgame", Genres: []string{"Adventure", "Science Fiction", "Action"},
		Cast: []string{"Robert Downey Jr.", "Chris Evans", "Mark Ruffalo"}, Director: "Anthony Russo", Collection: "The Avengers Collection",
		Budget: 356_000_000, Revenue: 2_799_400_000, VoteCount: 25000, VoteAverage: 8.2, Popularity: 120, Runtime: 181, ReleaseDate: "2019-04-24"},
	{ID: 107, Title: "The Avengers", Genres: []string{"Science Fiction", "Action", "Adventure"},
		Cast: []string{"Robert Downey Jr.", "Chris Evans", "Scarlett Johansson"}, Director: "Joss Whedon", Collection: "The Avengers Collection",
		Budget: 220_000_000, Revenue: 1_518_800_000, VoteCount: 30000, VoteAverage: 7.7, Popularity: 100, Runtime: 143, ReleaseDate: "2012-04-25"},
	{ID: 108, Title: "Looper", Genres: []string{"Action", "Thriller", "Science Fiction"},
		Cast: []string{"Joseph Gordon-Levitt", "Bruce Willis", "Emily Blunt"}, Director: "Rian Johnson",
		Budget: 30_000_000, Revenue: 176_500_000, VoteCount: 9000, VoteAverage: 6.9, Popularity: 30, Runtime: 119, ReleaseDate: "2012-09-26"},
	{ID: 109, Title: "Quiet Film", Genres: []string{"Drama"},
		Cast: []string{"Unknown Actor"},
		Budget: 0, Revenue: 0, VoteCount: 12, VoteAverage: 6.0, Popularity: 1.5, Runtime: 95, ReleaseDate: "2015-01-01"},
}

// CatalogRecords expands Catalog into raw records.
func CatalogRecords() []model.RawRecord {
	records := make([]model.RawRecord, len(Catalog))
	for i, f := range Catalog {
		records[i] = f.Raw()
	}
	return records
}

// ExampleRecord is the canonical single-record batch: zero budget, a two
// member cast and a single director.
func ExampleRecord() model.RawRecord {
	return model.RawRecord{
		"id":                   42.0,
		"title":                "Example",
		"budget":               0.0,
		"revenue":              5_000_000.0,
		"genres":               Names("Drama"),
		"credits":              map[string]any{"cast": Names("A", "B"), "crew": []any{map[string]any{"name": "C", "job": "Director"}}},
		"status":               "Released",
		"vote_count":           20.0,
		"vote_average":         6.0,
		"overview":             "An example movie.",
		"tagline":              "Just an example.",
		"release_date":         "2020-05-01",
		"runtime":              101.0,
		"popularity":           3.2,
		"original_language":    "en",
		"poster_path":          "/example.jpg",
		"spoken_languages":     Names("English"),
		"production_countries": Names("United States of America"),
		"production_companies": Names("Example Studios"),
	}
}

// SparseRecord returns a released record that resolves to exactly nine
// non-null fields after cleaning (director counts as one).
func SparseRecord(id float64) model.RawRecord {
	return model.RawRecord{
		"id":           id,
		"title":        fmt.Sprintf("Sparse %v", id),
		"status":       "Released",
		"overview":     "Barely described.",
		"tagline":      "Almost nothing.",
		"popularity":   0.4,
		"vote_count":   5.0,
		"vote_average": 5.5,
	}
}

// ExampleRecordJSON is ExampleRecord as it would be archived on disk.
const ExampleRecordJSON = `[
  {
    "adult": false,
    "id": 42,
    "imdb_id": "tt0000042",
    "title": "Example",
    "budget": 0,
    "revenue": 5000000,
    "genres": [{"id": 18, "name": "Drama"}],
    "belongs_to_collection": null,
    "credits": {
      "cast": [{"name": "A", "order": 0}, {"name": "B", "order": 1}],
      "crew": [{"name": "C", "job": "Director", "department": "Directing"}]
    },
    "status": "Released",
    "vote_count": 20,
    "vote_average": 6.0,
    "overview": "An example movie.",
    "tagline": "Just an example.",
    "release_date": "2020-05-01",
    "runtime": 101,
    "popularity": 3.2,
    "original_language": "en",
    "poster_path": "/example.jpg",
    "spoken_languages": [{"iso_639_1": "en", "name": "English"}],
    "production_countries": [{"iso_3166_1": "US", "name": "United States of America"}],
    "production_companies": [{"id": 1, "name": "Example Studios"}]
  }
]`
