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

package query_test

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/normalize"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/query"
	test "github.com/jaycherian/gcp-go-movie-analytics/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalog(t *testing.T) *model.Table {
	t.Helper()
	table, _, err := normalize.Clean(test.CatalogRecords())
	require.NoError(t, err)
	return table
}

func titles(t *model.Table) []string {
	out := make([]string, 0, t.Len())
	for _, v := range t.Column(model.FieldTitle) {
		out = append(out, v.(string))
	}
	return out
}

func TestContainsIsCaseInsensitive(t *testing.T) {
	out, err := query.From(catalog(t)).
		Where(
			query.Contains(model.FieldGenres, "science fiction"),
			query.Contains(model.FieldGenres, "ACTION"),
			query.Contains(model.ColumnCast, "bruce willis"),
		).
		OrderBy(model.FieldVoteAverage, true).
		Select(model.FieldTitle, model.FieldVoteAverage, model.FieldVoteCount, model.FieldGenres, model.ColumnCast).
		Run()
	require.NoError(t, err)
	assert.Equal(t, []string{"The Fifth Element", "Looper", "Armageddon"}, titles(out))
	assert.Equal(t, []string{"title", "vote_average", "vote_count", "genres", "cast"}, out.Columns())
}

func TestCastAndDirectorSortedByRuntime(t *testing.T) {
	out, err := query.From(catalog(t)).
		Where(query.Contains(model.ColumnCast, "Uma Thurman"), query.Contains(model.ColumnDirector, "Quentin Tarantino")).
		OrderBy(model.FieldRuntime, false).
		Run()
	require.NoError(t, err)
	assert.Equal(t, []string{"Kill Bill: Vol. 1", "Kill Bill: Vol. 2", "Pulp Fiction"}, titles(out))
}

func TestContainsSkipsNulls(t *testing.T) {
	table := model.FromRecords([]model.RawRecord{
		{"title": "A", "cast": "Bruce Willis"},
		{"title": "B"},
		{"title": "C", "cast": 42.0},
	})
	out, err := query.From(table).Where(query.Contains("cast", "willis")).Run()
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, titles(out))
}

func TestEqualsNotNullAndNot(t *testing.T) {
	table := catalog(t)

	out, err := query.From(table).Where(query.Equals(model.FieldID, 103)).Run()
	require.NoError(t, err)
	assert.Equal(t, []string{"Pulp Fiction"}, titles(out))

	out, err = query.From(table).Where(query.NotNull(model.ColumnCollectionName)).Run()
	require.NoError(t, err)
	assert.Equal(t, 4, out.Len())

	out, err = query.From(table).Where(query.Not(query.NotNull(model.ColumnBudgetMUSD))).Run()
	require.NoError(t, err)
	assert.Equal(t, []string{"Quiet Film"}, titles(out))

	out, err = query.From(table).Where(query.Or(query.Equals(model.FieldID, 101), query.Equals(model.FieldID, 108))).Run()
	require.NoError(t, err)
	assert.Equal(t, []string{"Armageddon", "Looper"}, titles(out))
}

func TestOrderByPutsNullsLast(t *testing.T) {
	table := catalog(t)

	desc, err := query.From(table).OrderBy(model.ColumnBudgetMUSD, true).Run()
	require.NoError(t, err)
	assert.Equal(t, "Avengers: Endgame", titles(desc)[0])
	assert.Equal(t, "Quiet Film", titles(desc)[desc.Len()-1])

	asc, err := query.From(table).OrderBy(model.ColumnBudgetMUSD, false).Run()
	require.NoError(t, err)
	assert.Equal(t, "Pulp Fiction", titles(asc)[0])
	assert.Equal(t, "Quiet Film", titles(asc)[asc.Len()-1])
}

func TestOrderByIsStable(t *testing.T) {
	table := model.FromRecords([]model.RawRecord{
		{"title": "first", "score": 1.0},
		{"title": "second", "score": 2.0},
		{"title": "third", "score": 1.0},
	})
	out, err := query.From(table).OrderBy("score", false).Run()
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "third", "second"}, titles(out))
}

func TestOrderByDates(t *testing.T) {
	out, err := query.From(catalog(t)).OrderBy(model.FieldReleaseDate, false).Limit(2).Run()
	require.NoError(t, err)
	assert.Equal(t, []string{"Pulp Fiction", "The Fifth Element"}, titles(out))
	assert.Equal(t, civil.Date{Year: 1994, Month: 9, Day: 10}, out.Value(0, model.FieldReleaseDate))
}

func TestLimit(t *testing.T) {
	table := catalog(t)
	out, err := query.From(table).Limit(3).Run()
	require.NoError(t, err)
	assert.Equal(t, 3, out.Len())

	out, err = query.From(table).Limit(0).Run()
	require.NoError(t, err)
	assert.Equal(t, table.Len(), out.Len())
}

func TestUnknownColumns(t *testing.T) {
	table := catalog(t)
	cases := map[string]*query.Query{
		"where":  query.From(table).Where(query.Contains("actors", "x")),
		"order":  query.From(table).OrderBy("rating", true),
		"select": query.From(table).Select("title", "box_office"),
	}
	for name, q := range cases {
		_, err := q.Run()
		var notFound *model.ColumnNotFoundError
		require.ErrorAs(t, err, &notFound, name)
		assert.ErrorIs(t, err, model.ErrColumnNotFound, name)
		assert.Contains(t, notFound.Available, model.FieldTitle, name)
	}
}

func TestQueryDoesNotModifyInput(t *testing.T) {
	table := catalog(t)
	before := table.Rows()
	_, err := query.From(table).Where(query.Contains(model.ColumnCast, "Willis")).OrderBy(model.FieldRuntime, true).Limit(1).Run()
	require.NoError(t, err)
	assert.Equal(t, before, table.Rows())
}

func TestCompare(t *testing.T) {
	assert.Equal(t, -1, query.Compare(1, 2.5))
	assert.Equal(t, 0, query.Compare(int64(3), 3.0))
	assert.Equal(t, 1, query.Compare("b", "a"))
	assert.Equal(t, -1, query.Compare(civil.Date{Year: 2000, Month: 1, Day: 1}, civil.Date{Year: 2001, Month: 1, Day: 1}))
}

func TestAtLeast(t *testing.T) {
	out, err := query.From(catalog(t)).Where(query.AtLeast(model.ColumnBudgetMUSD, 140)).Run()
	require.NoError(t, err)
	assert.Equal(t, []string{"Armageddon", "Avengers: Endgame", "The Avengers"}, titles(out))
}
