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

package normalize_test

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/normalize"
	"github.com/stretchr/testify/assert"
)

func TestStageOrder(t *testing.T) {
	var names []string
	for _, s := range normalize.Stages() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"validate-schema",
		"drop-unused-columns",
		"extract-nested-fields",
		"drop-nested-sources",
		"rename-extracted-columns",
		"coerce-numeric-columns",
		"coerce-release-date",
		"null-zero-sentinels",
		"convert-to-millions",
		"suppress-unrated-averages",
		"null-text-placeholders",
		"drop-duplicate-ids",
		"drop-missing-required",
		"drop-incomplete-rows",
		"keep-released-only",
		"project-canonical-columns",
		"reset-positions",
	}, names)
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{nil, nil},
		{12.5, 12.5},
		{int64(7), 7.0},
		{3, 3.0},
		{json.Number("150000000"), 150000000.0},
		{json.Number("1e3"), 1000.0},
		{" 42 ", 42.0},
		{"", nil},
		{"abc", nil},
		{"NaN", nil},
		{math.Inf(1), nil},
		{true, nil},
		{[]any{1}, nil},
		{map[string]any{"a": 1}, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalize.ToNumber(tt.in), "input %#v", tt.in)
	}
}

func TestToID(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{nil, nil},
		{42.0, int64(42)},
		{int64(7), int64(7)},
		{3, int64(3)},
		{json.Number("9007199254740993"), int64(9007199254740993)},
		{json.Number("1e3"), int64(1000)},
		{" 43 ", int64(43)},
		{"43.0", int64(43)},
		{2.5, nil},
		{json.Number("2.5"), nil},
		{1e19, nil},
		{json.Number("10000000000000000000"), nil},
		{-1e19, nil},
		{math.Inf(-1), nil},
		{"abc", nil},
		{true, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalize.ToID(tt.in), "input %#v", tt.in)
	}
}

func TestToDate(t *testing.T) {
	want := civil.Date{Year: 2010, Month: time.July, Day: 15}
	assert.Equal(t, want, normalize.ToDate("2010-07-15"))
	assert.Equal(t, want, normalize.ToDate("2010-07-15T10:00:00Z"))
	assert.Equal(t, want, normalize.ToDate("2010-07-15T10:00:00"))
	assert.Equal(t, want, normalize.ToDate("2010/07/15"))
	assert.Equal(t, want, normalize.ToDate(want))
	assert.Nil(t, normalize.ToDate(""))
	assert.Nil(t, normalize.ToDate("2010-13-45"))
	assert.Nil(t, normalize.ToDate(20100715))
	assert.Nil(t, normalize.ToDate(nil))
}

func TestExtractNestedFieldsWithoutSources(t *testing.T) {
	tbl := model.FromRecords([]model.RawRecord{{"id": 1.0, "title": "Bare"}})
	out := normalize.ExtractNestedFields(tbl)

	for _, c := range []string{"collection_name", "genre_names", "language_codes", "country_names", "company_names", "cast", "cast_size", "crew_size", "director"} {
		assert.True(t, out.HasColumn(c), c)
	}
	assert.Nil(t, out.Value(0, "genre_names"))
	assert.Equal(t, "Unknown", out.Value(0, "director"))
	assert.False(t, tbl.HasColumn("director"))
}

func TestRenameExtractedColumnsReplacesRawNames(t *testing.T) {
	tbl := model.FromRecords([]model.RawRecord{{
		"id":     1.0,
		"title":  "T",
		"genres": []any{map[string]any{"name": "Drama"}},
	}})
	tbl = normalize.RenameExtractedColumns(normalize.DropNestedSources(normalize.ExtractNestedFields(tbl)))

	assert.Equal(t, "Drama", tbl.Value(0, "genres"))
	assert.False(t, tbl.HasColumn("genre_names"))
	assert.False(t, tbl.HasColumn("credits"))
}

func TestKeepReleasedOnlyPassThrough(t *testing.T) {
	tbl := model.FromRecords([]model.RawRecord{{"id": 1.0}})
	assert.Equal(t, 1, normalize.KeepReleasedOnly(tbl).Len())
}

func TestSuppressUnratedRequiresBothColumns(t *testing.T) {
	tbl := model.FromRecords([]model.RawRecord{{"vote_average": 7.0}})
	assert.Equal(t, 7.0, normalize.SuppressUnratedAverages(tbl).Value(0, "vote_average"))
}
