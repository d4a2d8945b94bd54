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

package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/cache"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/report"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// ErrUnknownRanking is returned for a ranking name report.Rankings does not
// list.
var ErrUnknownRanking = errors.New("unknown ranking")

// DefaultMinDirectorMovies is the TopDirectors threshold used when callers do
// not pass one: every named director qualifies.
const DefaultMinDirectorMovies = 1

// ReportService computes reports over a MovieSource. Report tables are
// memoized in Cache when it is set; searches always run against the source.
type ReportService struct {
	Source MovieSource
	Cache  *cache.ReportCache
}

// NamedTable pairs a report table with its display title.
type NamedTable struct {
	Name  string       `json:"name"`
	Title string       `json:"title"`
	Table *model.Table `json:"table"`
}

func (s *ReportService) catalog(ctx context.Context) (*model.Table, error) {
	t, err := s.Source.Table(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return report.AddKPIs(t), nil
}

func (s *ReportService) cached(ctx context.Context, fn func(*model.Table) (*model.Table, error), key ...string) (*model.Table, error) {
	ctx, span := otel.Tracer("report-service").Start(ctx, "report")
	defer span.End()
	k := s.Cache.Key(key...)
	span.SetAttributes(attribute.String("report.key", k))

	return s.Cache.GetOrCompute(ctx, k, func(ctx context.Context) (*model.Table, error) {
		t, err := s.catalog(ctx)
		if err != nil {
			return nil, err
		}
		return fn(t)
	})
}

// Ranking computes one named ranking.
func (s *ReportService) Ranking(ctx context.Context, name string) (*model.Table, error) {
	r, ok := report.RankingByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRanking, name)
	}
	return s.cached(ctx, r.Run, "rankings", r.Name)
}

// Rankings computes every standard ranking in display order.
func (s *ReportService) Rankings(ctx context.Context) ([]NamedTable, error) {
	rankings := report.Rankings()
	out := make([]NamedTable, 0, len(rankings))
	for _, r := range rankings {
		t, err := s.cached(ctx, r.Run, "rankings", r.Name)
		if err != nil {
			return nil, fmt.Errorf("ranking %s: %w", r.Name, err)
		}
		out = append(out, NamedTable{Name: r.Name, Title: r.Title, Table: t})
	}
	return out, nil
}

func (s *ReportService) FranchiseComparison(ctx context.Context) (*model.Table, error) {
	return s.cached(ctx, report.FranchiseComparison, "franchise-comparison")
}

func (s *ReportService) TopFranchises(ctx context.Context) (*model.Table, error) {
	return s.cached(ctx, report.TopFranchises, "franchises")
}

// TopDirectors ranks directors with at least minMovies movies.
func (s *ReportService) TopDirectors(ctx context.Context, minMovies int) (*model.Table, error) {
	if minMovies <= 0 {
		minMovies = DefaultMinDirectorMovies
	}
	fn := func(t *model.Table) (*model.Table, error) {
		return report.TopDirectors(t, minMovies)
	}
	return s.cached(ctx, fn, "directors", strconv.Itoa(minMovies))
}

// Search runs a catalog search. KPI columns are available for sorting.
func (s *ReportService) Search(ctx context.Context, search MovieSearch) (*model.Table, error) {
	t, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	return search.Run(t)
}

// CastGenreSearch and CastDirectorSearch are the two canned searches.
func (s *ReportService) CastGenreSearch(ctx context.Context, cast string, genres ...string) (*model.Table, error) {
	t, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	return report.CastGenreSearch(t, cast, genres...)
}

func (s *ReportService) CastDirectorSearch(ctx context.Context, cast, director string) (*model.Table, error) {
	t, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	return report.CastDirectorSearch(t, cast, director)
}

func (s *ReportService) Movie(ctx context.Context, id int64) (*model.Movie, error) {
	return s.Source.Movie(ctx, id)
}

// Invalidate drops cached reports after the catalog changes.
func (s *ReportService) Invalidate(ctx context.Context) error {
	return s.Cache.Invalidate(ctx)
}
