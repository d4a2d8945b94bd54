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

package model

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

// Movie is the typed form of one clean row. Pointer fields are nullable.
type Movie struct {
	ID                  int64       `json:"id"`
	Title               string      `json:"title"`
	Tagline             *string     `json:"tagline"`
	ReleaseDate         *civil.Date `json:"release_date"`
	Genres              *string     `json:"genres"`
	CollectionName      *string     `json:"collection_name"`
	OriginalLanguage    *string     `json:"original_language"`
	BudgetMUSD          *float64    `json:"budget_musd"`
	RevenueMUSD         *float64    `json:"revenue_musd"`
	ProductionCompanies *string     `json:"production_companies"`
	ProductionCountries *string     `json:"production_countries"`
	VoteCount           *float64    `json:"vote_count"`
	VoteAverage         *float64    `json:"vote_average"`
	Popularity          *float64    `json:"popularity"`
	Runtime             *float64    `json:"runtime"`
	Overview            *string     `json:"overview"`
	SpokenLanguages     *string     `json:"spoken_languages"`
	PosterPath          *string     `json:"poster_path"`
	Cast                *string     `json:"cast"`
	CastSize            *int64      `json:"cast_size"`
	Director            string      `json:"director"`
	CrewSize            *int64      `json:"crew_size"`
}

// MovieSchema is the BigQuery schema of the clean movies table.
var MovieSchema = bigquery.Schema{
	{Name: FieldID, Type: bigquery.IntegerFieldType, Required: true},
	{Name: FieldTitle, Type: bigquery.StringFieldType, Required: true},
	{Name: FieldTagline, Type: bigquery.StringFieldType},
	{Name: FieldReleaseDate, Type: bigquery.DateFieldType},
	{Name: FieldGenres, Type: bigquery.StringFieldType},
	{Name: ColumnCollectionName, Type: bigquery.StringFieldType},
	{Name: FieldOriginalLanguage, Type: bigquery.StringFieldType},
	{Name: ColumnBudgetMUSD, Type: bigquery.FloatFieldType},
	{Name: ColumnRevenueMUSD, Type: bigquery.FloatFieldType},
	{Name: FieldProductionCompanies, Type: bigquery.StringFieldType},
	{Name: FieldProductionCountries, Type: bigquery.StringFieldType},
	{Name: FieldVoteCount, Type: bigquery.FloatFieldType},
	{Name: FieldVoteAverage, Type: bigquery.FloatFieldType},
	{Name: FieldPopularity, Type: bigquery.FloatFieldType},
	{Name: FieldRuntime, Type: bigquery.FloatFieldType},
	{Name: FieldOverview, Type: bigquery.StringFieldType},
	{Name: FieldSpokenLanguages, Type: bigquery.StringFieldType},
	{Name: FieldPosterPath, Type: bigquery.StringFieldType},
	{Name: ColumnCast, Type: bigquery.StringFieldType},
	{Name: ColumnCastSize, Type: bigquery.IntegerFieldType},
	{Name: ColumnDirector, Type: bigquery.StringFieldType},
	{Name: ColumnCrewSize, Type: bigquery.IntegerFieldType},
}

// Values returns the movie as a column-name keyed map using table cell
// types: int64 for the id and sizes, float64 for other numbers, civil.Date
// for dates and nil for nulls.
func (m *Movie) Values() map[string]any {
	v := map[string]any{
		FieldID:                  m.ID,
		FieldTitle:               m.Title,
		FieldTagline:             deref(m.Tagline),
		FieldReleaseDate:         deref(m.ReleaseDate),
		FieldGenres:              deref(m.Genres),
		ColumnCollectionName:     deref(m.CollectionName),
		FieldOriginalLanguage:    deref(m.OriginalLanguage),
		ColumnBudgetMUSD:         deref(m.BudgetMUSD),
		ColumnRevenueMUSD:        deref(m.RevenueMUSD),
		FieldProductionCompanies: deref(m.ProductionCompanies),
		FieldProductionCountries: deref(m.ProductionCountries),
		FieldVoteCount:           deref(m.VoteCount),
		FieldVoteAverage:         deref(m.VoteAverage),
		FieldPopularity:          deref(m.Popularity),
		FieldRuntime:             deref(m.Runtime),
		FieldOverview:            deref(m.Overview),
		FieldSpokenLanguages:     deref(m.SpokenLanguages),
		FieldPosterPath:          deref(m.PosterPath),
		ColumnCast:               deref(m.Cast),
		ColumnCastSize:           deref(m.CastSize),
		ColumnDirector:           m.Director,
		ColumnCrewSize:           deref(m.CrewSize),
	}
	for k, val := range v {
		if val == nil {
			delete(v, k)
		}
	}
	return v
}

// Save implements bigquery.ValueSaver. The movie id doubles as the insert id
// so retried inserts are de-duplicated by the streaming API.
func (m *Movie) Save() (map[string]bigquery.Value, string, error) {
	row := make(map[string]bigquery.Value, len(MovieSchema))
	for _, f := range MovieSchema {
		row[f.Name] = nil
	}
	for k, v := range m.Values() {
		row[k] = v
	}
	row[FieldID] = m.ID
	return row, strconv.FormatInt(m.ID, 10), nil
}

// Load implements bigquery.ValueLoader.
func (m *Movie) Load(values []bigquery.Value, schema bigquery.Schema) error {
	row := Row{Values: make(map[string]any, len(values))}
	for i, f := range schema {
		if i < len(values) && values[i] != nil {
			row.Values[f.Name] = values[i]
		}
	}
	movie, err := MovieFromRow(row)
	if err != nil {
		return err
	}
	*m = movie
	return nil
}

// MovieFromRow converts a clean table row into a Movie. It fails only when the
// row has no usable id or title.
func MovieFromRow(r Row) (Movie, error) {
	id, ok := intValue(r.Get(FieldID))
	if !ok {
		return Movie{}, fmt.Errorf("row %d: invalid id %v", r.Position, r.Get(FieldID))
	}
	title, ok := r.Get(FieldTitle).(string)
	if !ok {
		return Movie{}, fmt.Errorf("row %d: invalid title %v", r.Position, r.Get(FieldTitle))
	}
	m := Movie{
		ID:                  id,
		Title:               title,
		Tagline:             stringPtr(r.Get(FieldTagline)),
		ReleaseDate:         datePtr(r.Get(FieldReleaseDate)),
		Genres:              stringPtr(r.Get(FieldGenres)),
		CollectionName:      stringPtr(r.Get(ColumnCollectionName)),
		OriginalLanguage:    stringPtr(r.Get(FieldOriginalLanguage)),
		BudgetMUSD:          floatPtr(r.Get(ColumnBudgetMUSD)),
		RevenueMUSD:         floatPtr(r.Get(ColumnRevenueMUSD)),
		ProductionCompanies: stringPtr(r.Get(FieldProductionCompanies)),
		ProductionCountries: stringPtr(r.Get(FieldProductionCountries)),
		VoteCount:           floatPtr(r.Get(FieldVoteCount)),
		VoteAverage:         floatPtr(r.Get(FieldVoteAverage)),
		Popularity:          floatPtr(r.Get(FieldPopularity)),
		Runtime:             floatPtr(r.Get(FieldRuntime)),
		Overview:            stringPtr(r.Get(FieldOverview)),
		SpokenLanguages:     stringPtr(r.Get(FieldSpokenLanguages)),
		PosterPath:          stringPtr(r.Get(FieldPosterPath)),
		Cast:                stringPtr(r.Get(ColumnCast)),
		CastSize:            intPtr(r.Get(ColumnCastSize)),
		Director:            UnknownDirector,
		CrewSize:            intPtr(r.Get(ColumnCrewSize)),
	}
	if d, ok := r.Get(ColumnDirector).(string); ok {
		m.Director = d
	}
	return m, nil
}

// MoviesFromTable converts every row of a clean table.
func MoviesFromTable(t *Table) ([]*Movie, error) {
	movies := make([]*Movie, 0, t.Len())
	for _, r := range t.Rows() {
		m, err := MovieFromRow(r)
		if err != nil {
			return nil, err
		}
		movies = append(movies, &m)
	}
	return movies, nil
}

// TableFromMovies lays movies out as a clean table with the canonical column
// order.
func TableFromMovies(movies []*Movie) *Table {
	rows := make([]Row, len(movies))
	for i, m := range movies {
		rows[i] = Row{Position: i, Values: m.Values()}
	}
	return &Table{columns: append([]string(nil), CanonicalColumns...), rows: rows}
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func stringPtr(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

func floatPtr(v any) *float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int64:
		f = float64(n)
	case int:
		f = float64(n)
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func intValue(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		// 2^63 is not representable as int64
		if math.IsNaN(n) || n != math.Trunc(n) || n < -(1<<63) || n >= 1<<63 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func intPtr(v any) *int64 {
	if n, ok := intValue(v); ok {
		return &n
	}
	return nil
}

func datePtr(v any) *civil.Date {
	switch d := v.(type) {
	case civil.Date:
		return &d
	case time.Time:
		cd := civil.DateOf(d)
		return &cd
	case string:
		if cd, err := civil.ParseDate(d); err == nil {
			return &cd
		}
	}
	return nil
}
