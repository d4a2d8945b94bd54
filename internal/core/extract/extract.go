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

// Package extract flattens the nested substructures of a raw movie record
// into scalar values.
//
// Every extractor is total: it accepts the decoded form of a possibly
// malformed substructure and returns either a value or nil (null). Only
// Director has a non-null default.
package extract

import (
	"strings"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
)

// Separator joins list values into a single text field.
const Separator = "|"

// CastLimit is the number of billed cast members kept in the cast string.
const CastLimit = 5

// CollectionName returns the collection's name, or nil when the movie has no
// collection or the reference carries no name.
func CollectionName(c model.CollectionRef) *string {
	if !c.Valid || !c.HasName {
		return nil
	}
	return &c.Name
}

// JoinNames joins the names of a genre, language, country or company list.
// Elements without a name are skipped. A valid list whose elements all lack
// names yields an empty string, not nil.
func JoinNames(refs model.NamedRefs) *string {
	if !refs.Valid {
		return nil
	}
	names := make([]string, 0, len(refs.Items))
	for _, r := range refs.Items {
		if r.HasName {
			names = append(names, r.Name)
		}
	}
	joined := strings.Join(names, Separator)
	return &joined
}

// Cast joins the names of the first CastLimit cast members in billing order.
func Cast(c model.Credits) *string {
	if !c.Valid || !c.Cast.Present {
		return nil
	}
	members := c.Cast.Members
	if len(members) > CastLimit {
		members = members[:CastLimit]
	}
	names := make([]string, 0, len(members))
	for _, m := range members {
		if m.HasName {
			names = append(names, m.Name)
		}
	}
	joined := strings.Join(names, Separator)
	return &joined
}

// CastSize is the length of the full cast list.
func CastSize(c model.Credits) *int64 {
	if !c.Valid || !c.Cast.Present {
		return nil
	}
	n := int64(len(c.Cast.Members))
	return &n
}

// CrewSize is the length of the full crew list.
func CrewSize(c model.Credits) *int64 {
	if !c.Valid || !c.Crew.Present {
		return nil
	}
	n := int64(len(c.Crew.Members))
	return &n
}

// Director returns the name of the first crew member whose job is exactly
// "Director". It falls back to model.UnknownDirector.
func Director(c model.Credits) string {
	if !c.Valid || !c.Crew.Present {
		return model.UnknownDirector
	}
	for _, m := range c.Crew.Members {
		if m.Job != "Director" {
			continue
		}
		if !m.HasName {
			return model.UnknownDirector
		}
		return m.Name
	}
	return model.UnknownDirector
}

// Cell converts an extractor result into a table value. A nil pointer
// becomes an untyped nil so the cell reads as null.
func Cell[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
