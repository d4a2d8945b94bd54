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

// Package normalize turns a batch of raw movie records into a clean table.
//
// The work is split into small stages, each a pure function from table to
// table. Stages run in a fixed order because later stages read columns that
// earlier stages create and drop:
//
//	validate-schema            needs id, title            (fails the batch otherwise)
//	drop-unused-columns        -adult -imdb_id -original_title -video -homepage
//	extract-nested-fields      +collection_name +genre_names +language_codes +country_names
//	                           +company_names +cast +cast_size +crew_size +director
//	drop-nested-sources        -belongs_to_collection -genres -spoken_languages
//	                           -production_countries -production_companies -credits
//	rename-extracted-columns   genre_names>genres language_codes>spoken_languages
//	                           country_names>production_countries company_names>production_companies
//	coerce-numeric-columns     budget revenue id popularity vote_count vote_average runtime
//	coerce-release-date        release_date
//	null-zero-sentinels        budget revenue runtime
//	convert-to-millions        +budget_musd +revenue_musd
//	suppress-unrated-averages  vote_average
//	null-text-placeholders     overview tagline
//	drop-duplicate-ids         rows
//	drop-missing-required      rows
//	drop-incomplete-rows       rows
//	keep-released-only         rows, -status
//	project-canonical-columns  canonical order
//	reset-positions            positions 0..n-1
//
// No stage fails on a malformed record. A bad value degrades to null, or to
// the "Unknown" director.
package normalize

import (
	"fmt"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/extract"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
)

// MinNonNull is the completeness threshold: a row with fewer non-null values
// across the current columns is dropped.
const MinNonNull = 10

// Stage is one named table-to-table pass.
type Stage struct {
	Name  string
	Apply func(*model.Table) (*model.Table, error)
}

// Stage names.
const (
	StageValidateSchema     = "validate-schema"
	StageDropUnused         = "drop-unused-columns"
	StageExtractNested      = "extract-nested-fields"
	StageDropNestedSources  = "drop-nested-sources"
	StageRenameExtracted    = "rename-extracted-columns"
	StageCoerceNumeric      = "coerce-numeric-columns"
	StageCoerceReleaseDate  = "coerce-release-date"
	StageNullZeroSentinels  = "null-zero-sentinels"
	StageConvertToMillions  = "convert-to-millions"
	StageSuppressUnrated    = "suppress-unrated-averages"
	StageNullPlaceholders   = "null-text-placeholders"
	StageDropDuplicateIDs   = "drop-duplicate-ids"
	StageDropMissingRequire = "drop-missing-required"
	StageDropIncomplete     = "drop-incomplete-rows"
	StageKeepReleased       = "keep-released-only"
	StageProjectCanonical   = "project-canonical-columns"
	StageResetPositions     = "reset-positions"
)

var (
	unusedColumns = []string{
		model.FieldAdult,
		model.FieldIMDBID,
		model.FieldOriginalTitle,
		model.FieldVideo,
		model.FieldHomepage,
	}

	nestedSources = []string{
		model.FieldCollection,
		model.FieldGenres,
		model.FieldProductionCountries,
		model.FieldProductionCompanies,
		model.FieldSpokenLanguages,
		model.FieldCredits,
	}

	// temporary extraction columns and their public names
	extractedNames = map[string]string{
		"genre_names":    model.FieldGenres,
		"language_codes": model.FieldSpokenLanguages,
		"country_names":  model.FieldProductionCountries,
		"company_names":  model.FieldProductionCompanies,
	}

	numericColumns = []string{
		model.FieldBudget,
		model.FieldRevenue,
		model.FieldPopularity,
		model.FieldVoteCount,
		model.FieldVoteAverage,
		model.FieldRuntime,
	}

	zeroSentinelColumns = []string{model.FieldBudget, model.FieldRevenue, model.FieldRuntime}

	placeholders = map[string][]string{
		model.FieldOverview: {"", "No overview found.", "No Overview"},
		model.FieldTagline:  {"", "No tagline."},
	}
)

// Stages returns the full cleaning sequence in execution order.
func Stages() []Stage {
	return []Stage{
		{StageValidateSchema, ValidateSchema},
		{StageDropUnused, total(DropUnusedColumns)},
		{StageExtractNested, total(ExtractNestedFields)},
		{StageDropNestedSources, total(DropNestedSources)},
		{StageRenameExtracted, total(RenameExtractedColumns)},
		{StageCoerceNumeric, total(CoerceNumericColumns)},
		{StageCoerceReleaseDate, total(CoerceReleaseDate)},
		{StageNullZeroSentinels, total(NullZeroSentinels)},
		{StageConvertToMillions, total(ConvertToMillions)},
		{StageSuppressUnrated, total(SuppressUnratedAverages)},
		{StageNullPlaceholders, total(NullTextPlaceholders)},
		{StageDropDuplicateIDs, total(DropDuplicateIDs)},
		{StageDropMissingRequire, total(DropMissingRequired)},
		{StageDropIncomplete, total(DropIncompleteRows)},
		{StageKeepReleased, total(KeepReleasedOnly)},
		{StageProjectCanonical, total(ProjectCanonicalColumns)},
		{StageResetPositions, total(ResetPositions)},
	}
}

func total(fn func(*model.Table) *model.Table) func(*model.Table) (*model.Table, error) {
	return func(t *model.Table) (*model.Table, error) {
		return fn(t), nil
	}
}

// ValidateSchema checks the structural precondition of a batch. An empty
// batch becomes an empty table with the canonical columns. A non-empty batch
// in which no record has an id or a title is rejected.
func ValidateSchema(t *model.Table) (*model.Table, error) {
	if t.Len() == 0 {
		return model.EmptyTable(model.CanonicalColumns...), nil
	}
	for _, c := range []string{model.FieldID, model.FieldTitle} {
		if !t.HasColumn(c) {
			return nil, fmt.Errorf("%w: %q (batch of %d records)", model.ErrMissingRequiredColumn, c, t.Len())
		}
	}
	return t, nil
}

// DropUnusedColumns removes fields with no analytical value.
func DropUnusedColumns(t *model.Table) *model.Table {
	return t.Drop(unusedColumns...)
}

// ExtractNestedFields flattens the nested substructures into new columns. A
// missing source column reads as "no data" for every row.
func ExtractNestedFields(t *model.Table) *model.Table {
	credits := func(r model.Row) model.Credits { return model.DecodeCredits(r.Get(model.FieldCredits)) }
	joined := func(field string) func(model.Row) any {
		return func(r model.Row) any {
			return extract.Cell(extract.JoinNames(model.DecodeNamedRefs(r.Get(field))))
		}
	}

	t = t.WithColumn(model.ColumnCollectionName, func(r model.Row) any {
		return extract.Cell(extract.CollectionName(model.DecodeCollectionRef(r.Get(model.FieldCollection))))
	})
	t = t.WithColumn("genre_names", joined(model.FieldGenres))
	t = t.WithColumn("language_codes", joined(model.FieldSpokenLanguages))
	t = t.WithColumn("country_names", joined(model.FieldProductionCountries))
	t = t.WithColumn("company_names", joined(model.FieldProductionCompanies))
	t = t.WithColumn(model.ColumnCast, func(r model.Row) any { return extract.Cell(extract.Cast(credits(r))) })
	t = t.WithColumn(model.ColumnCastSize, func(r model.Row) any { return extract.Cell(extract.CastSize(credits(r))) })
	t = t.WithColumn(model.ColumnCrewSize, func(r model.Row) any { return extract.Cell(extract.CrewSize(credits(r))) })
	t = t.WithColumn(model.ColumnDirector, func(r model.Row) any { return extract.Director(credits(r)) })
	return t
}

// DropNestedSources removes the raw nested columns once extraction is done.
func DropNestedSources(t *model.Table) *model.Table {
	return t.Drop(nestedSources...)
}

// RenameExtractedColumns gives the extracted list columns their public names.
func RenameExtractedColumns(t *model.Table) *model.Table {
	return t.Rename(extractedNames)
}

// CoerceNumericColumns converts id to int64 and the other numeric columns to
// float64, nulling any value that does not parse. An id that is not a whole
// int64 becomes null and its row is dropped by DropMissingRequired.
func CoerceNumericColumns(t *model.Table) *model.Table {
	if t.HasColumn(model.FieldID) {
		t = t.WithColumn(model.FieldID, func(r model.Row) any { return ToID(r.Get(model.FieldID)) })
	}
	for _, c := range numericColumns {
		if !t.HasColumn(c) {
			continue
		}
		col := c
		t = t.WithColumn(col, func(r model.Row) any { return ToNumber(r.Get(col)) })
	}
	return t
}

// CoerceReleaseDate converts release_date to a calendar date.
func CoerceReleaseDate(t *model.Table) *model.Table {
	if !t.HasColumn(model.FieldReleaseDate) {
		return t
	}
	return t.WithColumn(model.FieldReleaseDate, func(r model.Row) any { return ToDate(r.Get(model.FieldReleaseDate)) })
}

// NullZeroSentinels replaces a literal zero budget, revenue or runtime with
// null. Zero in these fields means unknown.
func NullZeroSentinels(t *model.Table) *model.Table {
	for _, c := range zeroSentinelColumns {
		if !t.HasColumn(c) {
			continue
		}
		col := c
		t = t.WithColumn(col, func(r model.Row) any {
			v := r.Get(col)
			if isZero(v) {
				return nil
			}
			return v
		})
	}
	return t
}

// ConvertToMillions derives budget_musd and revenue_musd.
func ConvertToMillions(t *model.Table) *model.Table {
	for src, dst := range map[string]string{
		model.FieldBudget:  model.ColumnBudgetMUSD,
		model.FieldRevenue: model.ColumnRevenueMUSD,
	} {
		if !t.HasColumn(src) {
			continue
		}
		col := src
		t = t.WithColumn(dst, func(r model.Row) any {
			if f, ok := r.Get(col).(float64); ok {
				return f / 1_000_000
			}
			return nil
		})
	}
	return t
}

// SuppressUnratedAverages nulls vote_average wherever vote_count is zero.
func SuppressUnratedAverages(t *model.Table) *model.Table {
	if !t.HasColumn(model.FieldVoteCount) || !t.HasColumn(model.FieldVoteAverage) {
		return t
	}
	return t.WithColumn(model.FieldVoteAverage, func(r model.Row) any {
		if isZero(r.Get(model.FieldVoteCount)) {
			return nil
		}
		return r.Get(model.FieldVoteAverage)
	})
}

// NullTextPlaceholders nulls empty and placeholder overview and tagline
// values.
func NullTextPlaceholders(t *model.Table) *model.Table {
	for c, values := range placeholders {
		if !t.HasColumn(c) {
			continue
		}
		col, sentinels := c, values
		t = t.WithColumn(col, func(r model.Row) any {
			v := r.Get(col)
			if s, ok := v.(string); ok {
				for _, p := range sentinels {
					if s == p {
						return nil
					}
				}
			}
			return v
		})
	}
	return t
}

// DropDuplicateIDs keeps the first row for every id in batch order. Rows
// with a null id are left for DropMissingRequired.
func DropDuplicateIDs(t *model.Table) *model.Table {
	seen := make(map[any]bool, t.Len())
	return t.Filter(func(r model.Row) bool {
		id := r.Get(model.FieldID)
		if id == nil {
			return true
		}
		if seen[id] {
			return false
		}
		seen[id] = true
		return true
	})
}

// DropMissingRequired drops rows without an id or a title.
func DropMissingRequired(t *model.Table) *model.Table {
	return t.Filter(func(r model.Row) bool {
		return r.Get(model.FieldID) != nil && r.Get(model.FieldTitle) != nil
	})
}

// DropIncompleteRows drops rows with fewer than MinNonNull non-null values
// across the current column set.
func DropIncompleteRows(t *model.Table) *model.Table {
	return t.Filter(func(r model.Row) bool {
		return t.NonNullCount(r) >= MinNonNull
	})
}

// KeepReleasedOnly keeps rows whose status is "Released" and drops the status
// column. Without a status column the table passes through unchanged.
func KeepReleasedOnly(t *model.Table) *model.Table {
	if !t.HasColumn(model.FieldStatus) {
		return t
	}
	return t.Filter(func(r model.Row) bool {
		s, ok := r.Get(model.FieldStatus).(string)
		return ok && s == model.ReleasedStatus
	}).Drop(model.FieldStatus)
}

// ProjectCanonicalColumns reorders the table onto the canonical columns and
// drops everything else.
func ProjectCanonicalColumns(t *model.Table) *model.Table {
	return t.Project(model.CanonicalColumns...)
}

// ResetPositions renumbers rows 0..n-1.
func ResetPositions(t *model.Table) *model.Table {
	return t.Reindex()
}
