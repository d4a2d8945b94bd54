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

package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/normalize"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/report"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/services"
	test "github.com/jaycherian/gcp-go-movie-analytics/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

// tableSource serves a fixed clean table and counts loads.
type tableSource struct {
	table *model.Table
	loads int
	err   error
}

func (s *tableSource) Table(context.Context) (*model.Table, error) {
	s.loads++
	return s.table, s.err
}

func (s *tableSource) Movie(_ context.Context, id int64) (*model.Movie, error) {
	movies, err := model.MoviesFromTable(s.table)
	if err != nil {
		return nil, err
	}
	for _, m := range movies {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", model.ErrMovieNotFound, id)
}

func newReportService(t *testing.T) (*services.ReportService, *tableSource) {
	t.Helper()
	tbl, _, err := normalize.Clean(test.CatalogRecords())
	require.NoError(t, err)
	src := &tableSource{table: tbl}
	return &services.ReportService{Source: src}, src
}

func titles(t *model.Table) []any {
	return t.Column(model.FieldTitle)
}

func TestRankingMatchesReport(t *testing.T) {
	svc, src := newReportService(t)

	got, err := svc.Ranking(context.Background(), "highest-revenue")
	require.NoError(t, err)

	r, _ := report.RankingByName("highest-revenue")
	want, err := r.Run(src.table)
	require.NoError(t, err)
	assert.Equal(t, titles(want), titles(got))
	assert.Equal(t, "Avengers: Endgame", got.Value(0, model.FieldTitle))
}

func TestUnknownRanking(t *testing.T) {
	svc, src := newReportService(t)
	_, err := svc.Ranking(context.Background(), "most-awarded")
	assert.ErrorIs(t, err, services.ErrUnknownRanking)
	assert.Zero(t, src.loads)
}

func TestRankingsInDisplayOrder(t *testing.T) {
	svc, _ := newReportService(t)
	got, err := svc.Rankings(context.Background())
	require.NoError(t, err)
	require.Len(t, got, len(report.Rankings()))
	for i, r := range report.Rankings() {
		assert.Equal(t, r.Name, got[i].Name)
		assert.NotNil(t, got[i].Table)
	}
}

func TestTopDirectorsDefaultThreshold(t *testing.T) {
	svc, _ := newReportService(t)
	got, err := svc.TopDirectors(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, 6, got.Len())
	assert.Equal(t, "Anthony Russo", got.Value(0, model.ColumnDirector))

	// only Tarantino directed two or more catalog movies
	got, err = svc.TopDirectors(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	assert.Equal(t, "Quentin Tarantino", got.Value(0, model.ColumnDirector))
}

func TestFranchiseReports(t *testing.T) {
	svc, _ := newReportService(t)
	ctx := context.Background()

	franchises, err := svc.TopFranchises(ctx)
	require.NoError(t, err)
	assert.Equal(t, []any{"The Avengers Collection", "Kill Bill Collection"}, franchises.Column(model.ColumnCollectionName))

	comparison, err := svc.FranchiseComparison(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, comparison.Len())
}

func TestSourceErrorsPropagate(t *testing.T) {
	svc, src := newReportService(t)
	src.err = errors.New("bigquery unavailable")
	_, err := svc.TopFranchises(context.Background())
	assert.ErrorIs(t, err, src.err)
}

func TestSearch(t *testing.T) {
	svc, _ := newReportService(t)
	ctx := context.Background()

	got, err := svc.Search(ctx, services.MovieSearch{
		Director:  "tarantino",
		SortBy:    model.FieldRuntime,
		Ascending: true,
		Columns:   []string{model.FieldTitle, model.FieldRuntime},
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"Kill Bill: Vol. 1", "Kill Bill: Vol. 2", "Pulp Fiction"}, titles(got))
	assert.Equal(t, []string{model.FieldTitle, model.FieldRuntime}, got.Columns())

	got, err = svc.Search(ctx, services.MovieSearch{Cast: "bruce willis", Genres: []string{"science fiction"}, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []any{"The Fifth Element", "Looper"}, titles(got))

	got, err = svc.Search(ctx, services.MovieSearch{SortBy: model.ColumnROI})
	require.NoError(t, err)
	assert.Equal(t, "Pulp Fiction", got.Value(0, model.FieldTitle))

	_, err = svc.Search(ctx, services.MovieSearch{SortBy: "box_office"})
	var notFound *model.ColumnNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "box_office", notFound.Column)
}

func TestCannedSearches(t *testing.T) {
	svc, _ := newReportService(t)
	ctx := context.Background()

	got, err := svc.CastGenreSearch(ctx, "Bruce Willis", "Science Fiction", "Action")
	require.NoError(t, err)
	assert.Equal(t, []any{"The Fifth Element", "Looper", "Armageddon"}, titles(got))

	got, err = svc.CastDirectorSearch(ctx, "Uma Thurman", "Quentin Tarantino")
	require.NoError(t, err)
	assert.Equal(t, []any{"Kill Bill: Vol. 1", "Kill Bill: Vol. 2", "Pulp Fiction"}, titles(got))
}

func TestMovieLookup(t *testing.T) {
	svc, _ := newReportService(t)
	m, err := svc.Movie(context.Background(), 104)
	require.NoError(t, err)
	assert.Equal(t, "Kill Bill: Vol. 1", m.Title)

	_, err = svc.Movie(context.Background(), 1)
	assert.ErrorIs(t, err, model.ErrMovieNotFound)
}

func TestMovieServiceFQN(t *testing.T) {
	client, err := bigquery.NewClient(context.Background(), "movie-project", option.WithoutAuthentication())
	require.NoError(t, err)
	defer client.Close()

	svc := &services.MovieService{BigqueryClient: client, DatasetName: "movies", MoviesTable: "clean_movies"}
	assert.Equal(t, "movie-project.movies.clean_movies", svc.GetFQN())
}

func TestMovieServiceLive(t *testing.T) {
	test.RequireCloud(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := test.GetConfig()
	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	test.HandleErr(err, t)
	require.NoError(t, err)
	defer cloudClients.Close()

	svc := &services.MovieService{
		BigqueryClient: cloudClients.BiqQueryClient,
		DatasetName:    config.BigQueryDataSource.DatasetName,
		MoviesTable:    config.BigQueryDataSource.MoviesTable,
	}
	tbl, err := svc.Table(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.CanonicalColumns, tbl.Columns())

	if tbl.Len() > 0 {
		id := tbl.Value(0, model.FieldID).(int64)
		m, err := svc.Movie(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, m.ID)
	}
	_, err = svc.Movie(ctx, -1)
	assert.ErrorIs(t, err, model.ErrMovieNotFound)
}

func TestSummary(t *testing.T) {
	svc, _ := newReportService(t)
	got, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 9, got.Movies)
	assert.Equal(t, 4, got.FranchiseMovies)
	assert.Equal(t, 2, got.Franchises)
	assert.Equal(t, 6, got.Directors)
	assert.InDelta(t, 904.0, got.TotalBudgetMUSD, 1e-6)
	assert.InDelta(t, 5859.3, got.TotalRevenueMUSD, 1e-6)
	assert.Equal(t, civil.Date{Year: 1994, Month: 9, Day: 10}, got.FirstRelease)
	assert.Equal(t, civil.Date{Year: 2019, Month: 4, Day: 24}, got.LastRelease)
}

func TestSummaryEmptyCatalog(t *testing.T) {
	got, err := services.Summarize(model.TableFromMovies(nil))
	require.NoError(t, err)
	assert.Zero(t, got.Movies)
	assert.Nil(t, got.FirstRelease)
}
