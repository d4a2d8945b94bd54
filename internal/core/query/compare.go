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
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/normalize"
)

// Compare orders two non-null cell values. Numbers compare numerically,
// dates chronologically and strings lexically; values of different kinds
// fall back to comparing their text.
func Compare(a, b any) int {
	if fa, ok := Number(a); ok {
		if fb, ok := Number(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	if da, ok := a.(civil.Date); ok {
		if db, ok := b.(civil.Date); ok {
			switch {
			case da.Before(db):
				return -1
			case da.After(db):
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// Number reads a numeric cell as float64. Strings are not numbers here.
func Number(v any) (float64, bool) {
	switch v.(type) {
	case string, nil:
		return 0, false
	}
	f, ok := normalize.ToNumber(v).(float64)
	return f, ok
}

// Round rounds the numeric values of the named columns to places decimals.
// The exact decimal value of the float decides, as with Python's round:
// 2.675 is stored just below 2.675 and becomes 2.67, while an exact half
// such as 2.5 goes to the even neighbour. Nulls and non-numeric values are
// left alone, and names that are not columns of t are ignored.
func Round(t *model.Table, places int, columns ...string) *model.Table {
	if places < 0 {
		places = 0
	}
	for _, c := range columns {
		if !t.HasColumn(c) {
			continue
		}
		t = t.WithColumn(c, func(r model.Row) any {
			v := r.Get(c)
			f, ok := Number(v)
			if !ok {
				return v
			}
			return roundFloat(f, places)
		})
	}
	return t
}

func roundFloat(f float64, places int) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(f, 'f', places, 64), 64)
	if err != nil {
		return f
	}
	return rounded
}
