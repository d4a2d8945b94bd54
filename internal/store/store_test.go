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

package store_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/normalize"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/store"
	test "github.com/jaycherian/gcp-go-movie-analytics/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *store.MovieStore {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open(context.Background(), cloud.Store{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func catalogMovies(t *testing.T) []*model.Movie {
	t.Helper()
	tbl, _, err := normalize.Clean(test.CatalogRecords())
	require.NoError(t, err)
	movies, err := model.MoviesFromTable(tbl)
	require.NoError(t, err)
	return movies
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := store.Open(context.Background(), cloud.Store{Driver: "mysql"})
	assert.ErrorIs(t, err, cloud.ErrInvalidStore)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	movies := catalogMovies(t)

	require.NoError(t, s.SaveMovies(ctx, movies))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(movies)), n)

	endgame, err := s.Movie(ctx, 106)
	require.NoError(t, err)
	assert.Equal(t, "Avengers: Endgame", endgame.Title)
	assert.Equal(t, "Anthony Russo", endgame.Director)
	require.NotNil(t, endgame.ReleaseDate)
	assert.Equal(t, civil.Date{Year: 2019, Month: 4, Day: 24}, *endgame.ReleaseDate)
	require.NotNil(t, endgame.BudgetMUSD)
	assert.InDelta(t, 356.0, *endgame.BudgetMUSD, 1e-9)
	require.NotNil(t, endgame.CollectionName)
	assert.Equal(t, "The Avengers Collection", *endgame.CollectionName)

	quiet, err := s.Movie(ctx, 109)
	require.NoError(t, err)
	assert.Nil(t, quiet.BudgetMUSD)
	assert.Nil(t, quiet.CollectionName)
	assert.Equal(t, model.UnknownDirector, quiet.Director)
}

func TestSaveMoviesUpserts(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	movies := catalogMovies(t)
	require.NoError(t, s.SaveMovies(ctx, movies))

	updated := *movies[0]
	updated.Title = "Armageddon (Director's Cut)"
	require.NoError(t, s.SaveMovies(ctx, []*model.Movie{&updated}))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(movies)), n)

	got, err := s.Movie(ctx, updated.ID)
	require.NoError(t, err)
	assert.Equal(t, "Armageddon (Director's Cut)", got.Title)
}

func TestReplaceAll(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	movies := catalogMovies(t)
	require.NoError(t, s.SaveMovies(ctx, movies))

	require.NoError(t, s.ReplaceAll(ctx, movies[:2]))
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, s.ReplaceAll(ctx, nil))
	n, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMovieNotFound(t *testing.T) {
	s := openStore(t)
	_, err := s.Movie(context.Background(), 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTableMatchesCleanTable(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	// saved out of order; the table comes back ordered by id
	movies := catalogMovies(t)
	reversed := make([]*model.Movie, len(movies))
	for i, m := range movies {
		reversed[len(movies)-1-i] = m
	}
	require.NoError(t, s.SaveMovies(ctx, reversed))

	tbl, err := s.Table(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.CanonicalColumns, tbl.Columns())
	require.Equal(t, len(movies), tbl.Len())

	clean := model.TableFromMovies(movies)
	for i := range movies {
		assert.Equal(t, clean.Row(i).Values, tbl.Row(i).Values, "row %d", i)
	}
}

func TestEmptyStoreTable(t *testing.T) {
	s := openStore(t)
	tbl, err := s.Table(context.Background())
	require.NoError(t, err)
	assert.Zero(t, tbl.Len())
	assert.Equal(t, model.CanonicalColumns, tbl.Columns())
}
