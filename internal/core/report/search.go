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

package report

import (
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/query"
)

// CastGenreSearch finds movies featuring cast member whose genres include
// every one of genres, best rated first.
func CastGenreSearch(t *model.Table, cast string, genres ...string) (*model.Table, error) {
	where := []query.Condition{query.Contains(model.ColumnCast, cast)}
	for _, g := range genres {
		where = append(where, query.Contains(model.FieldGenres, g))
	}
	return query.From(t).
		Where(where...).
		OrderBy(model.FieldVoteAverage, true).
		Select(model.FieldTitle, model.FieldVoteAverage, model.FieldVoteCount, model.FieldGenres, model.ColumnCast).
		Run()
}

// CastDirectorSearch finds movies featuring cast member made by director,
// shortest first.
func CastDirectorSearch(t *model.Table, cast, director string) (*model.Table, error) {
	return query.From(t).
		Where(query.Contains(model.ColumnCast, cast), query.Contains(model.ColumnDirector, director)).
		OrderBy(model.FieldRuntime, false).
		Select(model.FieldTitle, model.FieldRuntime, model.ColumnDirector, model.ColumnCast, model.FieldReleaseDate).
		Run()
}
