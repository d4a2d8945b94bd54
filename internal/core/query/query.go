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

// Package query filters, sorts and aggregates clean movie tables.
//
//	top, err := query.From(movies).
//		Where(query.Contains("cast", "bruce willis"), query.Contains("genres", "action")).
//		OrderBy("vote_average", true).
//		Limit(10).
//		Select("title", "vote_average").
//		Run()
//
// Every column a query names is checked before it runs; an unknown name
// fails with a *model.ColumnNotFoundError listing the available columns.
package query

import (
	"sort"
	"strings"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
)

// Condition is a row predicate over named columns.
type Condition interface {
	Match(r model.Row) bool
	// Columns lists the columns the condition reads.
	Columns() []string
}

type containsCondition struct {
	column string
	substr string
}

// Contains matches rows whose text value in column contains substr, ignoring
// case. Nulls and non-text values never match.
func Contains(column, substr string) Condition {
	return containsCondition{column: column, substr: strings.ToLower(substr)}
}

func (c containsCondition) Match(r model.Row) bool {
	s, ok := r.Get(c.column).(string)
	return ok && strings.Contains(strings.ToLower(s), c.substr)
}

func (c containsCondition) Columns() []string { return []string{c.column} }

type equalsCondition struct {
	column string
	value  any
}

// Equals matches rows whose value in column equals value. Numbers of any Go
// type compare by value.
func Equals(column string, value any) Condition {
	return equalsCondition{column: column, value: value}
}

func (c equalsCondition) Match(r model.Row) bool {
	v := r.Get(c.column)
	if v == nil || c.value == nil {
		return v == nil && c.value == nil
	}
	return Compare(v, c.value) == 0
}

func (c equalsCondition) Columns() []string { return []string{c.column} }

type notNullCondition struct {
	column string
}

// NotNull matches rows with a value in column.
func NotNull(column string) Condition {
	return notNullCondition{column: column}
}

func (c notNullCondition) Match(r model.Row) bool { return r.Get(c.column) != nil }

func (c notNullCondition) Columns() []string { return []string{c.column} }

type atLeastCondition struct {
	column    string
	threshold float64
}

// AtLeast matches rows whose numeric value in column is >= threshold. Nulls and
// non-numeric values never match.
func AtLeast(column string, threshold float64) Condition {
	return atLeastCondition{column: column, threshold: threshold}
}

func (c atLeastCondition) Match(r model.Row) bool {
	f, ok := Number(r.Get(c.column))
	return ok && f >= c.threshold
}

func (c atLeastCondition) Columns() []string { return []string{c.column} }

type andCondition []Condition

// And matches rows that match every condition. And() matches everything.
func And(conditions ...Condition) Condition {
	return andCondition(conditions)
}

func (c andCondition) Match(r model.Row) bool {
	for _, cond := range c {
		if !cond.Match(r) {
			return false
		}
	}
	return true
}

func (c andCondition) Columns() []string {
	var out []string
	for _, cond := range c {
		out = append(out, cond.Columns()...)
	}
	return out
}

type orCondition []Condition

// Or matches rows that match at least one condition.
func Or(conditions ...Condition) Condition {
	return orCondition(conditions)
}

func (c orCondition) Match(r model.Row) bool {
	for _, cond := range c {
		if cond.Match(r) {
			return true
		}
	}
	return false
}

func (c orCondition) Columns() []string {
	return andCondition(c).Columns()
}

type notCondition struct {
	inner Condition
}

// Not inverts a condition.
func Not(c Condition) Condition {
	return notCondition{inner: c}
}

func (c notCondition) Match(r model.Row) bool { return !c.inner.Match(r) }

func (c notCondition) Columns() []string { return c.inner.Columns() }

// Query is a filter, sort, limit and projection over one table. Builder
// methods return the query so calls chain; Run evaluates it.
type Query struct {
	table   *model.Table
	where   []Condition
	orderBy string
	desc    bool
	limit   int
	columns []string
}

func From(t *model.Table) *Query {
	return &Query{table: t}
}

// Where adds conditions; all of them must match.
func (q *Query) Where(conditions ...Condition) *Query {
	q.where = append(q.where, conditions...)
	return q
}

// OrderBy sorts on one column. The sort is stable and nulls sort last in
// either direction.
func (q *Query) OrderBy(column string, desc bool) *Query {
	q.orderBy = column
	q.desc = desc
	return q
}

// Limit keeps the first n rows; n <= 0 keeps all.
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Select picks the output columns in order. Without it every column is kept.
func (q *Query) Select(columns ...string) *Query {
	q.columns = columns
	return q
}

func (q *Query) Run() (*model.Table, error) {
	if err := q.table.Check(And(q.where...).Columns()...); err != nil {
		return nil, err
	}
	if q.orderBy != "" {
		if err := q.table.Check(q.orderBy); err != nil {
			return nil, err
		}
	}

	out := q.table
	if len(q.where) > 0 {
		out = out.Filter(And(q.where...).Match)
	}
	if q.orderBy != "" {
		out = SortBy(out, q.orderBy, q.desc)
	}
	if q.limit > 0 && out.Len() > q.limit {
		out = Head(out, q.limit)
	}
	if len(q.columns) > 0 {
		return out.Select(q.columns...)
	}
	return out, nil
}

// SortBy returns t stably sorted on column with nulls last.
func SortBy(t *model.Table, column string, desc bool) *model.Table {
	rows := t.Rows()
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Get(column), rows[j].Get(column)
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		case desc:
			return Compare(a, b) > 0
		default:
			return Compare(a, b) < 0
		}
	})
	return model.NewTable(t.Columns(), rows)
}

// Head keeps the first n rows of t.
func Head(t *model.Table, n int) *model.Table {
	rows := t.Rows()
	if n < len(rows) {
		rows = rows[:max(n, 0)]
	}
	return model.NewTable(t.Columns(), rows)
}
