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

package model

import (
	"encoding/json"
	"slices"
	"sort"
)

// Row is one table row. Position is the row's index in the batch it came
// from and survives filtering until the table is reindexed. A key that is
// missing from Values, or maps to nil, is null.
type Row struct {
	Position int
	Values   map[string]any
}

// Get returns the value of a column, or nil when it is null.
func (r Row) Get(column string) any {
	return r.Values[column]
}

// Table is an ordered set of named columns over a list of rows. Tables are
// never modified in place: every transforming method returns a new table and
// leaves its receiver untouched, so a table handed to a consumer is a
// read-only view.
type Table struct {
	columns []string
	rows    []Row
}

// NewTable builds a table from explicit columns and rows. The rows are
// copied.
func NewTable(columns []string, rows []Row) *Table {
	t := &Table{columns: slices.Clone(columns), rows: make([]Row, len(rows))}
	for i, r := range rows {
		t.rows[i] = Row{Position: r.Position, Values: cloneValues(r.Values)}
	}
	return t
}

// EmptyTable returns a table with the given columns and no rows.
func EmptyTable(columns ...string) *Table {
	return &Table{columns: slices.Clone(columns), rows: []Row{}}
}

// FromRecords lays a batch out as a table. The column set is the union of all
// record keys in first-seen order.
func FromRecords(records []RawRecord) *Table {
	t := &Table{rows: make([]Row, 0, len(records))}
	seen := make(map[string]bool)
	for i, rec := range records {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			keys = append(keys, k)
		}
		// map iteration is random, keep the union deterministic
		sort.Strings(keys)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				t.columns = append(t.columns, k)
			}
		}
		values := make(map[string]any, len(rec))
		for k, v := range rec {
			if v != nil {
				values[k] = v
			}
		}
		t.rows = append(t.rows, Row{Position: i, Values: values})
	}
	return t
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// HasColumn reports whether the table has the named column.
func (t *Table) HasColumn(column string) bool {
	return slices.Contains(t.columns, column)
}

// Len is the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns a copy of row i.
func (t *Table) Row(i int) Row {
	r := t.rows[i]
	return Row{Position: r.Position, Values: cloneValues(r.Values)}
}

// Rows returns copies of every row.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	for i := range t.rows {
		out[i] = t.Row(i)
	}
	return out
}

// Value returns the value at row i and the named column. Unknown columns read
// as null.
func (t *Table) Value(i int, column string) any {
	return t.rows[i].Values[column]
}

// Column returns all values of one column in row order.
func (t *Table) Column(column string) []any {
	out := make([]any, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Values[column]
	}
	return out
}

// Check returns a ColumnNotFoundError for the first name that is not a
// column of t.
func (t *Table) Check(columns ...string) error {
	for _, c := range columns {
		if !t.HasColumn(c) {
			return &ColumnNotFoundError{Column: c, Available: t.Columns()}
		}
	}
	return nil
}

// WithColumn returns a table with the named column set to fn(row) for every
// row. The column is appended when new and keeps its position otherwise.
func (t *Table) WithColumn(column string, fn func(Row) any) *Table {
	out := t.shallow()
	if !out.HasColumn(column) {
		out.columns = append(out.columns, column)
	}
	for i, r := range t.rows {
		values := cloneValues(r.Values)
		if v := fn(r); v != nil {
			values[column] = v
		} else {
			delete(values, column)
		}
		out.rows[i] = Row{Position: r.Position, Values: values}
	}
	return out
}

// Drop removes the named columns. Names that are not columns are ignored.
func (t *Table) Drop(columns ...string) *Table {
	out := &Table{rows: make([]Row, len(t.rows))}
	for _, c := range t.columns {
		if !slices.Contains(columns, c) {
			out.columns = append(out.columns, c)
		}
	}
	for i, r := range t.rows {
		values := cloneValues(r.Values)
		for _, c := range columns {
			delete(values, c)
		}
		out.rows[i] = Row{Position: r.Position, Values: values}
	}
	return out
}

// Rename renames columns according to mapping (old name to new name). A
// renamed column replaces any existing column with the new name.
func (t *Table) Rename(mapping map[string]string) *Table {
	targets := make(map[string]bool, len(mapping))
	for from, to := range mapping {
		if t.HasColumn(from) {
			targets[to] = true
		}
	}
	out := &Table{rows: make([]Row, len(t.rows))}
	for _, c := range t.columns {
		if to, ok := mapping[c]; ok {
			out.columns = append(out.columns, to)
			continue
		}
		if targets[c] {
			continue
		}
		out.columns = append(out.columns, c)
	}
	for i, r := range t.rows {
		values := make(map[string]any, len(r.Values))
		for k, v := range r.Values {
			if _, renamed := mapping[k]; !renamed && targets[k] {
				continue
			}
			values[k] = v
		}
		for from, to := range mapping {
			if !t.HasColumn(from) {
				continue
			}
			delete(values, from)
			if v, ok := r.Values[from]; ok {
				values[to] = v
			}
		}
		out.rows[i] = Row{Position: r.Position, Values: values}
	}
	return out
}

// Filter keeps the rows for which keep returns true.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := &Table{columns: slices.Clone(t.columns), rows: make([]Row, 0, len(t.rows))}
	for _, r := range t.rows {
		if keep(r) {
			out.rows = append(out.rows, Row{Position: r.Position, Values: cloneValues(r.Values)})
		}
	}
	return out
}

// Project keeps the named columns that exist, in the given order. Missing
// names are skipped silently.
func (t *Table) Project(columns ...string) *Table {
	present := make([]string, 0, len(columns))
	for _, c := range columns {
		if t.HasColumn(c) && !slices.Contains(present, c) {
			present = append(present, c)
		}
	}
	return t.project(present)
}

// Select keeps exactly the named columns in the given order and fails with a
// ColumnNotFoundError when one does not exist.
func (t *Table) Select(columns ...string) (*Table, error) {
	if err := t.Check(columns...); err != nil {
		return nil, err
	}
	return t.project(columns), nil
}

func (t *Table) project(columns []string) *Table {
	out := &Table{columns: slices.Clone(columns), rows: make([]Row, len(t.rows))}
	for i, r := range t.rows {
		values := make(map[string]any, len(columns))
		for _, c := range columns {
			if v, ok := r.Values[c]; ok {
				values[c] = v
			}
		}
		out.rows[i] = Row{Position: r.Position, Values: values}
	}
	return out
}

// Reindex renumbers row positions 0..n-1 in current order.
func (t *Table) Reindex() *Table {
	out := t.shallow()
	for i, r := range t.rows {
		out.rows[i] = Row{Position: i, Values: cloneValues(r.Values)}
	}
	return out
}

// SortByPosition orders rows by their batch position.
func (t *Table) SortByPosition() *Table {
	out := t.shallow()
	copy(out.rows, t.rows)
	sort.SliceStable(out.rows, func(i, j int) bool {
		return out.rows[i].Position < out.rows[j].Position
	})
	for i, r := range out.rows {
		out.rows[i] = Row{Position: r.Position, Values: cloneValues(r.Values)}
	}
	return out
}

// NonNullCount counts the non-null values of a row across the table's
// columns.
func (t *Table) NonNullCount(r Row) int {
	n := 0
	for _, c := range t.columns {
		if r.Values[c] != nil {
			n++
		}
	}
	return n
}

// Concat appends the rows of others to t. The column set becomes the union in
// first-seen order. Positions are kept as they are.
func Concat(tables ...*Table) *Table {
	out := &Table{rows: []Row{}}
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.columns {
			if !slices.Contains(out.columns, c) {
				out.columns = append(out.columns, c)
			}
		}
		for _, r := range t.rows {
			out.rows = append(out.rows, Row{Position: r.Position, Values: cloneValues(r.Values)})
		}
	}
	return out
}

// MarshalJSON encodes the table as {"columns": [...], "rows": [[...], ...]}
// with nulls in place of missing values.
func (t *Table) MarshalJSON() ([]byte, error) {
	rows := make([][]any, len(t.rows))
	for i, r := range t.rows {
		row := make([]any, len(t.columns))
		for j, c := range t.columns {
			row[j] = r.Values[c]
		}
		rows[i] = row
	}
	columns := t.columns
	if columns == nil {
		columns = []string{}
	}
	return json.Marshal(struct {
		Columns []string `json:"columns"`
		Rows    [][]any  `json:"rows"`
	}{Columns: columns, Rows: rows})
}

// UnmarshalJSON reverses MarshalJSON. Numbers decode as float64, so the
// result is meant for presentation and caching, not for re-cleaning.
func (t *Table) UnmarshalJSON(data []byte) error {
	var wire struct {
		Columns []string `json:"columns"`
		Rows    [][]any  `json:"rows"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	t.columns = wire.Columns
	t.rows = make([]Row, len(wire.Rows))
	for i, raw := range wire.Rows {
		values := make(map[string]any, len(wire.Columns))
		for j, c := range wire.Columns {
			if j < len(raw) && raw[j] != nil {
				values[c] = raw[j]
			}
		}
		t.rows[i] = Row{Position: i, Values: values}
	}
	return nil
}

func (t *Table) shallow() *Table {
	return &Table{columns: slices.Clone(t.columns), rows: make([]Row, len(t.rows))}
}

func cloneValues(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
