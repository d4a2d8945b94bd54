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

package services

import (
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/query"
)

// DefaultSearchLimit caps search results when MovieSearch.Limit is not set.
const DefaultSearchLimit = 50

// MovieSearch is a free-form catalog search. Every text filter is a case
// insensitive substring match and all filters must hold.
type MovieSearch struct {
	Title    string
	Cast     string
	Genres   []string
	Director string
	// SortBy is any clean column, vote_average when empty.
	SortBy    string
	Ascending bool
	Limit     int
	// Columns to return, all when empty.
	Columns []string
}

// conditions translates the search into query conditions.
func (s MovieSearch) conditions() []query.Condition {
	var where []query.Condition
	if s.Title != "" {
		where = append(where, query.Contains(model.FieldTitle, s.Title))
	}
	if s.Cast != "" {
		where = append(where, query.Contains(model.ColumnCast, s.Cast))
	}
	for _, g := range s.Genres {
		if g != "" {
			where = append(where, query.Contains(model.FieldGenres, g))
		}
	}
	if s.Director != "" {
		where = append(where, query.Contains(model.ColumnDirector, s.Director))
	}
	return where
}

// Run applies the search to a clean table. Unknown sort or output columns
// fail with a *model.ColumnNotFoundError.
func (s MovieSearch) Run(t *model.Table) (*model.Table, error) {
	sortBy := s.SortBy
	if sortBy == "" {
		sortBy = model.FieldVoteAverage
	}
	limit := s.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	q := query.From(t).
		Where(s.conditions()...).
		OrderBy(sortBy, !s.Ascending).
		Limit(limit)
	if len(s.Columns) > 0 {
		q = q.Select(s.Columns...)
	}
	return q.Run()
}
