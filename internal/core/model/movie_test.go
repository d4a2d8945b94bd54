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

package model_test

import (
	"testing"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovieFromRow(t *testing.T) {
	row := model.Row{Values: map[string]any{
		"id":           42.0,
		"title":        "Example",
		"release_date": civil.Date{Year: 2001, Month: 2, Day: 3},
		"revenue_musd": 5.0,
		"cast_size":    int64(2),
		"director":     "C",
	}}
	m, err := model.MovieFromRow(row)
	require.NoError(t, err)

	assert.Equal(t, int64(42), m.ID)
	assert.Equal(t, "Example", m.Title)
	assert.Nil(t, m.BudgetMUSD)
	require.NotNil(t, m.RevenueMUSD)
	assert.Equal(t, 5.0, *m.RevenueMUSD)
	require.NotNil(t, m.CastSize)
	assert.Equal(t, int64(2), *m.CastSize)
	assert.Equal(t, "2001-02-03", m.ReleaseDate.String())
	assert.Equal(t, "C", m.Director)
}

func TestMovieFromRowRejectsMissingIdentity(t *testing.T) {
	_, err := model.MovieFromRow(model.Row{Values: map[string]any{"title": "x"}})
	assert.Error(t, err)
	_, err = model.MovieFromRow(model.Row{Values: map[string]any{"id": 1.5, "title": "x"}})
	assert.Error(t, err)
	_, err = model.MovieFromRow(model.Row{Values: map[string]any{"id": 1.0}})
	assert.Error(t, err)
	_, err = model.MovieFromRow(model.Row{Values: map[string]any{"id": 1e19, "title": "x"}})
	assert.Error(t, err)

	m, err := model.MovieFromRow(model.Row{Values: map[string]any{"id": int64(9007199254740993), "title": "x"}})
	require.NoError(t, err)
	assert.Equal(t, int64(9007199254740993), m.ID)
}

func TestMovieSaveAndLoad(t *testing.T) {
	avg := 6.0
	m := &model.Movie{ID: 7, Title: "Seven", VoteAverage: &avg, Director: "Unknown"}

	row, insertID, err := m.Save()
	require.NoError(t, err)
	assert.Equal(t, "7", insertID)
	assert.Len(t, row, len(model.MovieSchema))
	assert.Equal(t, int64(7), row["id"])
	assert.Nil(t, row["budget_musd"])
	assert.Equal(t, 6.0, row["vote_average"])

	values := make([]bigquery.Value, len(model.MovieSchema))
	for i, f := range model.MovieSchema {
		values[i] = row[f.Name]
	}
	var loaded model.Movie
	require.NoError(t, loaded.Load(values, model.MovieSchema))
	assert.Equal(t, *m, loaded)
}

func TestTableFromMoviesRoundTrip(t *testing.T) {
	name := "Saga"
	movies := []*model.Movie{
		{ID: 1, Title: "One", CollectionName: &name, Director: "D"},
		{ID: 2, Title: "Two", Director: "Unknown"},
	}
	tbl := model.TableFromMovies(movies)
	assert.Equal(t, model.CanonicalColumns, tbl.Columns())
	assert.Equal(t, "Saga", tbl.Value(0, "collection_name"))
	assert.Nil(t, tbl.Value(1, "collection_name"))

	back, err := model.MoviesFromTable(tbl)
	require.NoError(t, err)
	assert.Equal(t, movies, back)
}
