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

// Package report derives the analytical views served by the API and printed
// by the report command: KPI columns, top-N rankings, cast and director
// searches, and franchise and director aggregates.
package report

import (
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/normalize"
)

// AddKPIs appends profit_musd (revenue - budget) and roi (revenue / budget).
// Either is null when an operand is null; roi is also null for a zero budget.
func AddKPIs(t *model.Table) *model.Table {
	t = t.WithColumn(model.ColumnProfitMUSD, func(r model.Row) any {
		revenue, budget, ok := money(r)
		if !ok {
			return nil
		}
		return revenue - budget
	})
	return t.WithColumn(model.ColumnROI, func(r model.Row) any {
		revenue, budget, ok := money(r)
		if !ok || budget == 0 {
			return nil
		}
		return revenue / budget
	})
}

func money(r model.Row) (revenue, budget float64, ok bool) {
	revenue, rok := normalize.ToNumber(r.Get(model.ColumnRevenueMUSD)).(float64)
	budget, bok := normalize.ToNumber(r.Get(model.ColumnBudgetMUSD)).(float64)
	return revenue, budget, rok && bok
}
