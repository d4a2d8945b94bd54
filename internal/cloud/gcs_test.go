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

package cloud_test

import (
	"bytes"
	"compress/gzip"
	"strings"
	"testing"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
	test "github.com/jaycherian/gcp-go-movie-analytics/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRawBatch(t *testing.T) {
	cases := []struct {
		prefix string
		name   string
		want   bool
	}{
		{"raw", "raw/2024-10-11.json", true},
		{"raw/", "raw/2024-10-11.json.gz", true},
		{"raw", "raw/nested/batch.json", true},
		{"raw", "clean/batch.json", false},
		{"raw", "rawish/batch.json", false},
		{"raw", "raw/batch.csv", false},
		{"", "batch.json", true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, cloud.IsRawBatch(c.prefix, c.name), "%s in %s", c.name, c.prefix)
	}
}

func TestDecodeRawBatchPlain(t *testing.T) {
	records, err := cloud.DecodeRawBatch(strings.NewReader(test.ExampleRecordJSON))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Example", records[0][model.FieldTitle])
}

func TestDecodeRawBatchGzip(t *testing.T) {
	var plain bytes.Buffer
	require.NoError(t, model.WriteRawRecords(&plain, test.CatalogRecords()))

	var compressed bytes.Buffer
	gz := gzip.NewWriter(&compressed)
	_, err := gz.Write(plain.Bytes())
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	records, err := cloud.DecodeRawBatch(&compressed)
	require.NoError(t, err)
	assert.Len(t, records, len(test.CatalogRecords()))
}

func TestDecodeRawBatchRejectsOtherArchives(t *testing.T) {
	// zip local file header
	zipHead := append([]byte{0x50, 0x4B, 0x03, 0x04}, make([]byte, 300)...)
	_, err := cloud.DecodeRawBatch(bytes.NewReader(zipHead))
	assert.ErrorIs(t, err, cloud.ErrNotRawBatch)
}

func TestDecodeRawBatchRejectsImages(t *testing.T) {
	png := append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)
	_, err := cloud.DecodeRawBatch(bytes.NewReader(png))
	assert.ErrorIs(t, err, cloud.ErrNotRawBatch)
}

func TestDecodeRawBatchInvalidJSON(t *testing.T) {
	_, err := cloud.DecodeRawBatch(strings.NewReader(`{"id": 1}`))
	assert.Error(t, err)
}

func TestGCSObjectString(t *testing.T) {
	obj := &cloud.GCSObject{Bucket: "raw-bucket", Name: "raw/batch.json"}
	assert.Equal(t, "gs://raw-bucket/raw/batch.json", obj.String())
}

func TestRawArchiveObjectName(t *testing.T) {
	config := cloud.NewConfig()
	config.Storage.RawBucket = "raw-bucket"
	config.Storage.RawPrefix = "raw"

	archive := cloud.NewRawArchive(nil, nil, config)
	assert.Equal(t, "raw/batch-1.json", archive.ObjectName("batch-1"))

	config.Storage.Compress = true
	archive = cloud.NewRawArchive(nil, nil, config)
	assert.Equal(t, "raw/batch-1.json.gz", archive.ObjectName("batch-1"))
	assert.True(t, cloud.IsRawBatch(config.Storage.RawPrefix, archive.ObjectName("batch-1")))
}
