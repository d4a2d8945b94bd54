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

// Package render prints tables as aligned markdown for terminals.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
	"github.com/mattn/go-runewidth"
)

// DefaultMaxCellWidth bounds long text cells such as overviews.
const DefaultMaxCellWidth = 40

const minColumnWidth = 3

type options struct {
	maxCellWidth int
	nullText     string
}

type Option func(*options)

// WithMaxCellWidth truncates cells wider than n display columns. Zero or
// less disables truncation.
func WithMaxCellWidth(n int) Option {
	return func(o *options) { o.maxCellWidth = n }
}

// WithNullText sets the text printed for null cells.
func WithNullText(s string) Option {
	return func(o *options) { o.nullText = s }
}

// Markdown writes t as a markdown table. Columns are padded by display
// width, so wide (CJK) titles stay aligned. Numeric columns are right
// aligned.
func Markdown(w io.Writer, t *model.Table, opts ...Option) error {
	o := options{maxCellWidth: DefaultMaxCellWidth}
	for _, opt := range opts {
		opt(&o)
	}

	columns := t.Columns()
	if len(columns) == 0 {
		return nil
	}
	cells := make([][]string, t.Len())
	numeric := make([]bool, len(columns))
	for j, c := range columns {
		numeric[j] = isNumericColumn(t, c)
	}
	widths := make([]int, len(columns))
	for j, c := range columns {
		widths[j] = max(minColumnWidth, runewidth.StringWidth(escape(c)))
	}
	for i := range cells {
		cells[i] = make([]string, len(columns))
		for j, c := range columns {
			s := escape(o.format(t.Value(i, c)))
			if o.maxCellWidth > 0 && runewidth.StringWidth(s) > o.maxCellWidth {
				s = runewidth.Truncate(s, o.maxCellWidth, "…")
			}
			cells[i][j] = s
			widths[j] = max(widths[j], runewidth.StringWidth(s))
		}
	}

	header := make([]string, len(columns))
	for j, c := range columns {
		header[j] = escape(c)
	}
	if err := writeRow(w, header, widths, numeric); err != nil {
		return err
	}
	var sb strings.Builder
	sb.WriteString("|")
	for j, width := range widths {
		if numeric[j] {
			sb.WriteString(" " + strings.Repeat("-", width-1) + ": |")
		} else {
			sb.WriteString(" " + strings.Repeat("-", width) + " |")
		}
	}
	sb.WriteString("\n")
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err
	}
	for _, row := range cells {
		if err := writeRow(w, row, widths, numeric); err != nil {
			return err
		}
	}
	return nil
}

// Section writes a markdown heading followed by the table and a blank line.
func Section(w io.Writer, title string, t *model.Table, opts ...Option) error {
	if _, err := fmt.Fprintf(w, "## %s\n\n", title); err != nil {
		return err
	}
	if t.Len() == 0 {
		_, err := io.WriteString(w, "_no rows_\n\n")
		return err
	}
	if err := Markdown(w, t, opts...); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func writeRow(w io.Writer, row []string, widths []int, numeric []bool) error {
	var sb strings.Builder
	sb.WriteString("|")
	for j, s := range row {
		pad := strings.Repeat(" ", widths[j]-runewidth.StringWidth(s))
		sb.WriteString(" ")
		if numeric[j] {
			sb.WriteString(pad + s)
		} else {
			sb.WriteString(s + pad)
		}
		sb.WriteString(" |")
	}
	sb.WriteString("\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatValue renders one cell. Floats use the shortest exact decimal form.
func FormatValue(v any) string {
	return options{}.format(v)
}

func (o options) format(v any) string {
	switch x := v.(type) {
	case nil:
		return o.nullText
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case civil.Date:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

func isNumericColumn(t *model.Table, column string) bool {
	seen := false
	for _, v := range t.Column(column) {
		switch v.(type) {
		case nil:
		case float64, float32, int64, int:
			seen = true
		default:
			return false
		}
	}
	return seen
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
