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

	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/query"
)

// Summary is the catalog overview shown on the dashboard.
type Summary struct {
	Movies           int     `json:"movies"`
	FranchiseMovies  int     `json:"franchise_movies"`
	Franchises       int     `json:"franchises"`
	Directors        int     `json:"directors"`
	TotalBudgetMUSD  float64 `json:"total_budget_musd"`
	TotalRevenueMUSD float64 `json:"total_revenue_musd"`
	FirstRelease     any     `json:"first_release"`
	LastRelease      any     `json:"last_release"`
}

func (s *ReportService) Summary(ctx context.Context) (*Summary, error) {
	t, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	return Summarize(t)
}

// Summarize computes the overview of a clean table. Directors exclude the
// Unknown placeholder; release bounds are null for an empty catalog.
func Summarize(t *model.Table) (*Summary, error) {
	franchises, err := query.GroupBy(t, model.ColumnCollectionName).Count("movies").Run()
	if err != nil {
		return nil, err
	}
	known := t.Filter(query.Not(query.Equals(model.ColumnDirector, model.UnknownDirector)).Match)
	directors, err := query.GroupBy(known, model.ColumnDirector).Count("movies").Run()
	if err != nil {
		return nil, err
	}

	out := &Summary{
		Movies:     t.Len(),
		Franchises: franchises.Len(),
		Directors:  directors.Len(),
	}
	for _, r := range t.Rows() {
		if r.Get(model.ColumnCollectionName) != nil {
			out.FranchiseMovies++
		}
		if v, ok := query.Number(r.Get(model.ColumnBudgetMUSD)); ok {
			out.TotalBudgetMUSD += v
		}
		if v, ok := query.Number(r.Get(model.ColumnRevenueMUSD)); ok {
			out.TotalRevenueMUSD += v
		}
		if d := r.Get(model.FieldReleaseDate); d != nil {
			if out.FirstRelease == nil || query.Compare(d, out.FirstRelease) < 0 {
				out.FirstRelease = d
			}
			if out.LastRelease == nil || query.Compare(d, out.LastRelease) > 0 {
				out.LastRelease = d
			}
		}
	}
	return out, nil
}
