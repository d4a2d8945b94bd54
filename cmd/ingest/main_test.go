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

package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs(" 299534, 19995,,", nil)
	require.NoError(t, err)
	assert.Equal(t, []int{299534, 19995}, ids)

	ids, err = parseIDs("", []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids)

	_, err = parseIDs("", nil)
	assert.Error(t, err)

	_, err = parseIDs("12,abc", nil)
	assert.ErrorContains(t, err, "abc")
}

func TestNewBatchID(t *testing.T) {
	now := time.Date(2024, 10, 11, 23, 0, 0, 0, time.UTC)
	id := newBatchID(now)
	assert.True(t, strings.HasPrefix(id, "2024-10-11-"), id)
	assert.NotEqual(t, id, newBatchID(now))
}
