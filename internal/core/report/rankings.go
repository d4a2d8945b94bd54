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

package report

import (
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/query"
)

// Thresholds applied by the ratio and rating rankings.
const (
	MinBudgetForROI   = 10.0
	MinVotesForRating = 10.0
)

// Ranking is a named TopMovies view.
type Ranking struct {
	Name    string     `json:"name"`
	Title   string     `json:"title"`
	Options TopOptions `json:"-"`
}

// Run computes the ranking over a clean table. KPI columns are added when
// the table does not have them yet.
func (r Ranking) Run(t *model.Table) (*model.Table, error) {
	if !t.HasColumn(model.ColumnROI) {
		t = AddKPIs(t)
	}
	return TopMovies(t, r.Options)
}

// Rankings lists the standard rankings in display order.
func Rankings() []Ranking {
	roiFilter := query.AtLeast(model.ColumnBudgetMUSD, MinBudgetForROI)
	ratingFilter := query.AtLeast(model.FieldVoteCount, MinVotesForRating)
	return []Ranking{
		{Name: "highest-revenue", Title: "Highest Revenue", Options: TopOptions{Metric: model.ColumnRevenueMUSD}},
		{Name: "lowest-revenue", Title: "Lowest Revenue", Options: TopOptions{Metric: model.ColumnRevenueMUSD, Ascending: true}},
		{Name: "highest-budget", Title: "Highest Budget", Options: TopOptions{Metric: model.ColumnBudgetMUSD}},
		{Name: "lowest-budget", Title: "Lowest Budget", Options: TopOptions{Metric: model.ColumnBudgetMUSD, Ascending: true}},
		{Name: "highest-profit", Title: "Highest Profit", Options: TopOptions{Metric: model.ColumnProfitMUSD}},
		{Name: "lowest-profit", Title: "Lowest Profit", Options: TopOptions{Metric: model.ColumnProfitMUSD, Ascending: true}},
		{Name: "highest-roi", Title: "Highest ROI (budget >= 10M)", Options: TopOptions{Metric: model.ColumnROI, Filter: roiFilter}},
		{Name: "lowest-roi", Title: "Lowest ROI (budget >= 10M)", Options: TopOptions{Metric: model.ColumnROI, Ascending: true, Filter: roiFilter}},
		{Name: "most-voted", Title: "Most Voted", Options: TopOptions{Metric: model.FieldVoteCount}},
		{Name: "highest-rated", Title: "Highest Rated (>= 10 votes)", Options: TopOptions{Metric: model.FieldVoteAverage, Filter: ratingFilter}},
		{Name: "lowest-rated", Title: "Lowest Rated (>= 10 votes)", Options: TopOptions{Metric: model.FieldVoteAverage, Ascending: true, Filter: ratingFilter}},
		{Name: "most-popular", Title: "Most Popular", Options: TopOptions{Metric: model.FieldPopularity}},
	}
}

// RankingByName looks a ranking up by its Name.
func RankingByName(name string) (Ranking, bool) {
	for _, r := range Rankings() {
		if r.Name == name {
			return r, true
		}
	}
	return Ranking{}, false
}
