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

// Franchise comparison columns.
const (
	ColumnMetric     = "Metric"
	ColumnFranchise  = "Franchise Movies"
	ColumnStandalone = "Standalone Movies"
	ColumnDifference = "Difference"
)

// Franchise and director aggregate columns.
const (
	ColumnNumMovies    = "num_movies"
	ColumnTotalBudget  = "total_budget"
	ColumnMeanBudget   = "mean_budget"
	ColumnTotalRevenue = "total_revenue"
	ColumnMeanRevenue  = "mean_revenue"
	ColumnMeanRating   = "mean_rating"
)

type comparisonMetric struct {
	label  string
	column string
	median bool
}

var comparisonMetrics = []comparisonMetric{
	{label: "Mean Revenue (M USD)", column: model.ColumnRevenueMUSD},
	{label: "Median ROI", column: model.ColumnROI, median: true},
	{label: "Mean Budget (M USD)", column: model.ColumnBudgetMUSD},
	{label: "Mean Popularity", column: model.FieldPopularity},
	{label: "Mean Rating", column: model.FieldVoteAverage},
}

// FranchiseComparison compares movies that belong to a collection with
// standalone movies. Each metric is aggregated over the non-null values of a
// side; a side with none yields null, and so does the difference.
func FranchiseComparison(t *model.Table) (*model.Table, error) {
	if err := t.Check(model.ColumnCollectionName); err != nil {
		return nil, err
	}
	if !t.HasColumn(model.ColumnROI) {
		t = AddKPIs(t)
	}
	franchise := t.Filter(query.NotNull(model.ColumnCollectionName).Match)
	standalone := t.Filter(query.Not(query.NotNull(model.ColumnCollectionName)).Match)

	rows := make([]model.Row, 0, len(comparisonMetrics))
	for i, m := range comparisonMetrics {
		f := m.aggregate(franchise)
		s := m.aggregate(standalone)
		values := map[string]any{ColumnMetric: m.label}
		if f != nil {
			values[ColumnFranchise] = f
		}
		if s != nil {
			values[ColumnStandalone] = s
		}
		if f != nil && s != nil {
			values[ColumnDifference] = f.(float64) - s.(float64)
		}
		rows = append(rows, model.Row{Position: i, Values: values})
	}
	return model.NewTable([]string{ColumnMetric, ColumnFranchise, ColumnStandalone, ColumnDifference}, rows), nil
}

func (m comparisonMetric) aggregate(t *model.Table) any {
	var nums []float64
	for _, v := range t.Column(m.column) {
		if f, ok := query.Number(v); ok {
			nums = append(nums, f)
		}
	}
	if m.median {
		return query.Median(nums)
	}
	return query.Mean(nums)
}

// TopFranchises aggregates budget, revenue and rating per collection,
// rounded to two decimals and ordered by total revenue, highest first.
func TopFranchises(t *model.Table) (*model.Table, error) {
	grouped, err := query.GroupBy(t, model.ColumnCollectionName).
		Count(ColumnNumMovies).
		Sum(model.ColumnBudgetMUSD, ColumnTotalBudget).
		Mean(model.ColumnBudgetMUSD, ColumnMeanBudget).
		Sum(model.ColumnRevenueMUSD, ColumnTotalRevenue).
		Mean(model.ColumnRevenueMUSD, ColumnMeanRevenue).
		Mean(model.FieldVoteAverage, ColumnMeanRating).
		Run()
	if err != nil {
		return nil, err
	}
	grouped = query.Round(grouped, 2, ColumnTotalBudget, ColumnMeanBudget, ColumnTotalRevenue, ColumnMeanRevenue, ColumnMeanRating)
	return query.SortBy(grouped, ColumnTotalRevenue, true).Reindex(), nil
}

// TopDirectors aggregates revenue and rating per director, ignoring the
// Unknown placeholder, keeps directors with at least minMovies movies and
// orders them by total revenue, highest first.
func TopDirectors(t *model.Table, minMovies int) (*model.Table, error) {
	if err := t.Check(model.ColumnDirector); err != nil {
		return nil, err
	}
	known := t.Filter(query.Not(query.Equals(model.ColumnDirector, model.UnknownDirector)).Match)
	grouped, err := query.GroupBy(known, model.ColumnDirector).
		Count(ColumnNumMovies).
		Sum(model.ColumnRevenueMUSD, ColumnTotalRevenue).
		Mean(model.FieldVoteAverage, ColumnMeanRating).
		MinCount(minMovies).
		Run()
	if err != nil {
		return nil, err
	}
	grouped = query.Round(grouped, 2, ColumnTotalRevenue, ColumnMeanRating)
	return query.SortBy(grouped, ColumnTotalRevenue, true).Reindex(), nil
}
