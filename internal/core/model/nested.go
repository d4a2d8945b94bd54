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

// NamedRef is one element of a nested name list (genre, language, country,
// company). HasName is false when the element carried no string "name".
type NamedRef struct {
	Name    string
	HasName bool
}

// NamedRefs is a decoded name list. Valid is false when the source value was
// missing, not a list, empty, or contained a non-map element.
type NamedRefs struct {
	Valid bool
	Items []NamedRef
}

// CollectionRef is the optional franchise reference of a movie.
type CollectionRef struct {
	Valid   bool
	Name    string
	HasName bool
}

// CreditMember is one cast or crew entry.
type CreditMember struct {
	Name    string
	HasName bool
	Job     string
}

// CreditList is the cast or crew list of a credits structure. Present is
// false when the key is absent or does not hold a list.
type CreditList struct {
	Present bool
	Members []CreditMember
}

// Credits is the decoded credits structure.
type Credits struct {
	Valid bool
	Cast  CreditList
	Crew  CreditList
}

// DecodeNamedRefs reads a list of {"name": ...} maps.
func DecodeNamedRefs(v any) NamedRefs {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return NamedRefs{}
	}
	items := make([]NamedRef, 0, len(list))
	for _, e := range list {
		m, ok := e.(map[string]any)
		if !ok {
			return NamedRefs{}
		}
		name, has := stringField(m, "name")
		items = append(items, NamedRef{Name: name, HasName: has})
	}
	return NamedRefs{Valid: true, Items: items}
}

// DecodeCollectionRef reads a belongs_to_collection value.
func DecodeCollectionRef(v any) CollectionRef {
	m, ok := v.(map[string]any)
	if !ok {
		return CollectionRef{}
	}
	name, has := stringField(m, "name")
	return CollectionRef{Valid: true, Name: name, HasName: has}
}

// DecodeCredits reads a credits structure. Entries of the cast or crew list
// that are not maps are kept as nameless members so list sizes stay exact.
func DecodeCredits(v any) Credits {
	m, ok := v.(map[string]any)
	if !ok {
		return Credits{}
	}
	return Credits{
		Valid: true,
		Cast:  decodeCreditList(m["cast"]),
		Crew:  decodeCreditList(m["crew"]),
	}
}

func decodeCreditList(v any) CreditList {
	list, ok := v.([]any)
	if !ok {
		return CreditList{}
	}
	members := make([]CreditMember, 0, len(list))
	for _, e := range list {
		m, ok := e.(map[string]any)
		if !ok {
			members = append(members, CreditMember{})
			continue
		}
		name, has := stringField(m, "name")
		job, _ := stringField(m, "job")
		members = append(members, CreditMember{Name: name, HasName: has, Job: job})
	}
	return CreditList{Present: true, Members: members}
}

func stringField(m map[string]any, key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}
