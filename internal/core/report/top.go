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
	"sort"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/normalize"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/query"
)

// DefaultTopN is used when TopOptions.N is not positive.
const DefaultTopN = 5

// TopOptions selects the rows TopMovies returns.
type TopOptions struct {
	// Metric is the column to rank by. Required.
	Metric string
	// N is the number of rows, DefaultTopN when <= 0.
	N int
	// Ascending ranks the smallest values first.
	Ascending bool
	// Filter, when set, restricts the candidates.
	Filter query.Condition
	// Columns are the display columns, defaulting to title, the metric,
	// release_date and genres. Columns the table lacks are left out.
	Columns []string
}

// TopMovies ranks movies by a metric column. The metric is read as a number
// and rows without one are skipped; ties keep table order. The result shows
// the requested display columns that exist, or the first four columns of the
// table when none do.
func TopMovies(t *model.Table, opts TopOptions) (*model.Table, error) {
	if err := t.Check(opts.Metric); err != nil {
		return nil, err
	}
	n := opts.N
	if n <= 0 {
		n = DefaultTopN
	}
	display := opts.Columns
	if len(display) == 0 {
		display = []string{model.FieldTitle, opts.Metric, model.FieldReleaseDate, model.FieldGenres}
	}

	candidates := t
	if opts.Filter != nil {
		if err := t.Check(opts.Filter.Columns()...); err != nil {
			return nil, err
		}
		candidates = candidates.Filter(opts.Filter.Match)
	}
	candidates = candidates.
		WithColumn(opts.Metric, func(r model.Row) any { return normalize.ToNumber(r.Get(opts.Metric)) }).
		Filter(func(r model.Row) bool { return r.Get(opts.Metric) != nil })

	if candidates.Len() == 0 {
		return model.EmptyTable(existing(t, display)...), nil
	}

	rows := candidates.Rows()
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Get(opts.Metric).(float64), rows[j].Get(opts.Metric).(float64)
		if opts.Ascending {
			return a < b
		}
		return a > b
	})
	if len(rows) > n {
		rows = rows[:n]
	}
	result := model.NewTable(candidates.Columns(), rows)

	cols := existing(result, display)
	if len(cols) == 0 {
		cols = result.Columns()[:min(4, len(result.Columns()))]
	}
	return result.Project(cols...), nil
}

func existing(t *model.Table, columns []string) []string {
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if t.HasColumn(c) {
			out = append(out, c)
		}
	}
	return out
}
