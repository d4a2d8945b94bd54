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

// Package model holds the data types shared by the cleaning pipeline, the
// query layer and the persistence adapters.
//
// A batch moves through three shapes:
//  1. RawRecord: one catalog response exactly as it was fetched, nested
//     structures included.
//  2. Table: an ordered, column-oriented view of a batch that the cleaning
//     stages transform one pass at a time.
//  3. Movie: the typed clean row that is written to BigQuery and the
//     relational store.
package model

import (
	"encoding/json"
	"fmt"
	"io"
)

// Raw record field names as delivered by the catalog API.
const (
	FieldID                  = "id"
	FieldTitle               = "title"
	FieldOriginalTitle       = "original_title"
	FieldAdult               = "adult"
	FieldIMDBID              = "imdb_id"
	FieldVideo               = "video"
	FieldHomepage            = "homepage"
	FieldTagline             = "tagline"
	FieldOverview            = "overview"
	FieldStatus              = "status"
	FieldReleaseDate         = "release_date"
	FieldBudget              = "budget"
	FieldRevenue             = "revenue"
	FieldRuntime             = "runtime"
	FieldPopularity          = "popularity"
	FieldVoteCount           = "vote_count"
	FieldVoteAverage         = "vote_average"
	FieldOriginalLanguage    = "original_language"
	FieldPosterPath          = "poster_path"
	FieldCollection          = "belongs_to_collection"
	FieldGenres              = "genres"
	FieldSpokenLanguages     = "spoken_languages"
	FieldProductionCountries = "production_countries"
	FieldProductionCompanies = "production_companies"
	FieldCredits             = "credits"
)

// Derived column names produced by the cleaning pipeline and the KPI step.
const (
	ColumnBudgetMUSD     = "budget_musd"
	ColumnRevenueMUSD    = "revenue_musd"
	ColumnCollectionName = "collection_name"
	ColumnCast           = "cast"
	ColumnCastSize       = "cast_size"
	ColumnCrewSize       = "crew_size"
	ColumnDirector       = "director"
	ColumnProfitMUSD     = "profit_musd"
	ColumnROI            = "roi"
)

// ReleasedStatus is the only status value retained in a clean table.
const ReleasedStatus = "Released"

// UnknownDirector is the sentinel stored when no director can be resolved.
const UnknownDirector = "Unknown"

// CanonicalColumns is the fixed column order of a clean table.
var CanonicalColumns = []string{
	FieldID,
	FieldTitle,
	FieldTagline,
	FieldReleaseDate,
	FieldGenres,
	ColumnCollectionName,
	FieldOriginalLanguage,
	ColumnBudgetMUSD,
	ColumnRevenueMUSD,
	FieldProductionCompanies,
	FieldProductionCountries,
	FieldVoteCount,
	FieldVoteAverage,
	FieldPopularity,
	FieldRuntime,
	FieldOverview,
	FieldSpokenLanguages,
	FieldPosterPath,
	ColumnCast,
	ColumnCastSize,
	ColumnDirector,
	ColumnCrewSize,
}

// RawRecord is one unprocessed movie response. Values keep the shapes
// produced by encoding/json: map[string]any, []any, string, bool, nil and
// json.Number (or float64 when built by hand).
type RawRecord map[string]any

// LoadRawRecords decodes a JSON array of raw records. Numbers are kept as
// json.Number so large identifiers survive decoding unchanged.
func LoadRawRecords(r io.Reader) ([]RawRecord, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var records []RawRecord
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode raw records: %w", err)
	}
	return records, nil
}

// WriteRawRecords serializes a batch as an indented JSON array, the same shape
// LoadRawRecords accepts.
func WriteRawRecords(w io.Writer, records []RawRecord) error {
	if records == nil {
		records = []RawRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode raw records: %w", err)
	}
	return nil
}
