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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/services"
	test "github.com/jaycherian/gcp-go-movie-analytics/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, model.WriteRawRecords(&buf, test.CatalogRecords()))
	path := filepath.Join(t.TempDir(), "batch.json")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	ctx := context.Background()
	s, err := LoadFile(ctx, writeCatalog(t))
	require.NoError(t, err)
	defer s.Close()

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(test.CatalogRecords())), n)
}

func TestLoadFileErrors(t *testing.T) {
	ctx := context.Background()
	_, err := LoadFile(ctx, filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "image.json")
	png := append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 32)...)
	require.NoError(t, os.WriteFile(path, png, 0o600))
	_, err = LoadFile(ctx, path)
	assert.ErrorIs(t, err, cloud.ErrNotRawBatch)
}

func TestWriteReport(t *testing.T) {
	ctx := context.Background()
	s, err := LoadFile(ctx, writeCatalog(t))
	require.NoError(t, err)
	defer s.Close()

	var out bytes.Buffer
	reports := &services.ReportService{Source: s}
	require.NoError(t, WriteReport(ctx, &out, reports, services.DefaultMinDirectorMovies))

	report := out.String()
	assert.True(t, strings.HasPrefix(report, "# Movie analytics\n"))
	assert.Contains(t, report, "- movies: 9\n")
	for _, title := range []string{
		"## Bruce Willis in Science Fiction Action",
		"## Uma Thurman directed by Quentin Tarantino",
		"## Franchise vs standalone",
		"## Top franchises",
		"## Top directors",
	} {
		assert.Contains(t, report, title)
	}
	assert.Contains(t, report, "Avengers: Endgame")
	assert.Contains(t, report, "Quentin Tarantino")
}

func TestOpenSourceUnknown(t *testing.T) {
	_, _, err := openSource(context.Background(), cloud.NewConfig(), "", "csv")
	assert.ErrorContains(t, err, "unknown source")
}
