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

package query

import (
	"fmt"
	"reflect"
	"slices"
	"sort"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
)

type aggKind int

const (
	aggCount aggKind = iota
	aggSum
	aggMean
	aggMedian
)

type aggregation struct {
	kind   aggKind
	column string
	as     string
}

// Grouping aggregates the rows of a table per value of a key column. Rows
// whose key is null belong to no group. The result has the key column
// followed by one column per aggregation, with groups in ascending key order.
type Grouping struct {
	table    *model.Table
	key      string
	aggs     []aggregation
	minCount int
}

func GroupBy(t *model.Table, key string) *Grouping {
	return &Grouping{table: t, key: key}
}

// Count adds the number of rows in each group.
func (g *Grouping) Count(as string) *Grouping {
	g.aggs = append(g.aggs, aggregation{kind: aggCount, as: as})
	return g
}

// Sum adds the sum of the non-null numbers in column. A group with none sums
// to 0.
func (g *Grouping) Sum(column, as string) *Grouping {
	g.aggs = append(g.aggs, aggregation{kind: aggSum, column: column, as: as})
	return g
}

// Mean adds the mean of the non-null numbers in column, or null when there
// are none.
func (g *Grouping) Mean(column, as string) *Grouping {
	g.aggs = append(g.aggs, aggregation{kind: aggMean, column: column, as: as})
	return g
}

// Median adds the median of the non-null numbers in column, or null when
// there are none.
func (g *Grouping) Median(column, as string) *Grouping {
	g.aggs = append(g.aggs, aggregation{kind: aggMedian, column: column, as: as})
	return g
}

// MinCount drops groups with fewer than n rows.
func (g *Grouping) MinCount(n int) *Grouping {
	g.minCount = n
	return g
}

type group struct {
	key  any
	rows []model.Row
}

func (g *Grouping) Run() (*model.Table, error) {
	columns := []string{g.key}
	if err := g.table.Check(g.key); err != nil {
		return nil, err
	}
	for _, a := range g.aggs {
		if a.kind != aggCount {
			if err := g.table.Check(a.column); err != nil {
				return nil, err
			}
		}
		if slices.Contains(columns, a.as) {
			return nil, fmt.Errorf("duplicate output column %q", a.as)
		}
		columns = append(columns, a.as)
	}

	index := make(map[any]int)
	var groups []*group
	for _, r := range g.table.Rows() {
		k := r.Get(g.key)
		if k == nil {
			continue
		}
		mk := mapKey(k)
		i, ok := index[mk]
		if !ok {
			i = len(groups)
			index[mk] = i
			groups = append(groups, &group{key: k})
		}
		groups[i].rows = append(groups[i].rows, r)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return Compare(groups[i].key, groups[j].key) < 0
	})

	rows := make([]model.Row, 0, len(groups))
	for _, grp := range groups {
		if len(grp.rows) < g.minCount {
			continue
		}
		values := map[string]any{g.key: grp.key}
		for _, a := range g.aggs {
			if v := a.apply(grp.rows); v != nil {
				values[a.as] = v
			}
		}
		rows = append(rows, model.Row{Position: len(rows), Values: values})
	}
	return model.NewTable(columns, rows), nil
}

func (a aggregation) apply(rows []model.Row) any {
	if a.kind == aggCount {
		return int64(len(rows))
	}
	nums := make([]float64, 0, len(rows))
	for _, r := range rows {
		if f, ok := Number(r.Get(a.column)); ok {
			nums = append(nums, f)
		}
	}
	switch a.kind {
	case aggSum:
		return sum(nums)
	case aggMean:
		return Mean(nums)
	case aggMedian:
		return Median(nums)
	}
	return nil
}

func sum(nums []float64) float64 {
	total := 0.0
	for _, f := range nums {
		total += f
	}
	return total
}

// Mean returns the mean of nums, or nil when nums is empty.
func Mean(nums []float64) any {
	if len(nums) == 0 {
		return nil
	}
	return sum(nums) / float64(len(nums))
}

// Median returns the median of nums, or nil when nums is empty. nums is not
// modified.
func Median(nums []float64) any {
	if len(nums) == 0 {
		return nil
	}
	sorted := slices.Clone(nums)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// mapKey makes a group key usable as a map key.
func mapKey(v any) any {
	if f, ok := Number(v); ok {
		return f
	}
	if !reflect.TypeOf(v).Comparable() {
		return fmt.Sprint(v)
	}
	return v
}
