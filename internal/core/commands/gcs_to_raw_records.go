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

package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/cor"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
)

// BatchReader loads an archived raw batch. *cloud.RawArchive implements it.
type BatchReader interface {
	Read(ctx context.Context, obj *cloud.GCSObject) ([]model.RawRecord, error)
}

// GCSToRawRecords downloads a raw batch and decodes it into records. Plain
// and gzip-compressed batches are both accepted.
type GCSToRawRecords struct {
	cor.BaseCommand
	reader BatchReader
}

func NewGCSToRawRecords(name string, reader BatchReader) *GCSToRawRecords {
	return &GCSToRawRecords{BaseCommand: *cor.NewBaseCommand(name), reader: reader}
}

func (c *GCSToRawRecords) Execute(context cor.Context) {
	obj, ok := context.Get(c.GetInputParam()).(*cloud.GCSObject)
	if !ok {
		c.Fail(context, fmt.Errorf("expected *cloud.GCSObject, got %T", context.Get(c.GetInputParam())))
		return
	}

	records, err := c.reader.Read(context.GetContext(), obj)
	if err != nil {
		c.Fail(context, fmt.Errorf("failed to read raw batch %s: %w", obj, err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	slog.InfoContext(context.GetContext(), "read raw batch", "object", obj.String(), "records", len(records))
	context.Add(c.GetOutputParam(), records)
}
