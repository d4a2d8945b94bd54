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
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingRequiredColumn is returned when a non-empty batch has no
	// record carrying one of the required fields (id, title).
	ErrMissingRequiredColumn = errors.New("required column missing from batch")

	// ErrColumnNotFound is matched by every ColumnNotFoundError.
	ErrColumnNotFound = errors.New("column not found")

	ErrMovieNotFound = errors.New("movie not found")
)

// ColumnNotFoundError names a column that was requested but does not exist,
// together with the columns that do.
type ColumnNotFoundError struct {
	Column    string
	Available []string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found; available columns: %s", e.Column, strings.Join(e.Available, ", "))
}

// Is lets errors.Is(err, ErrColumnNotFound) match.
func (e *ColumnNotFoundError) Is(target error) bool {
	return target == ErrColumnNotFound
}
