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

const (
	// QryAllMovies reads the whole clean table.
	//
	// Placeholders:
	// - `%s`: the fully qualified name of the movies table.
	QryAllMovies = "SELECT * FROM `%s` ORDER BY id"

	// QryFindMovieById looks up one movie by its catalog id, bound as the
	// @id query parameter.
	//
	// Placeholders:
	// - `%s`: the fully qualified name of the movies table.
	QryFindMovieById = "SELECT * FROM `%s` WHERE id = @id"
)
