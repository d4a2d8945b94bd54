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

package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// dateLayouts are tried in order when coercing release dates.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
}

// ToNumber coerces a cell to float64. Values that cannot be read as a finite
// number return nil.
func ToNumber(v any) any {
	var f float64
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

// int64 bounds as float64; 2^63 itself is out of range.
const (
	minInt64Float = -9223372036854775808.0
	maxInt64Float = 9223372036854775808.0
)

// ToID coerces a cell to an int64 identifier. json.Number and numeric strings
// are parsed as integers first so ids above 2^53 stay distinct. Fractional,
// non-finite and out of range values return nil.
func ToID(v any) any {
	switch n := v.(type) {
	case nil:
		return nil
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return i
		}
	}
	f, ok := ToNumber(v).(float64)
	if !ok || f != math.Trunc(f) || f < minInt64Float || f >= maxInt64Float {
		return nil
	}
	return int64(f)
}

// ToDate coerces a cell to a civil.Date. Unparseable values return nil.
func ToDate(v any) any {
	switch d := v.(type) {
	case civil.Date:
		if d.IsValid() {
			return d
		}
	case time.Time:
		return civil.DateOf(d)
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return civil.DateOf(ts)
			}
		}
	}
	return nil
}

func isZero(v any) bool {
	f, ok := v.(float64)
	return ok && f == 0
}
