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

	"github.com/jaycherian/gcp-go-movie-analytics/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/cor"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
)

// BatchWriter archives a raw batch. *cloud.RawArchive implements it.
type BatchWriter interface {
	Write(ctx context.Context, batchID string, records []model.RawRecord) (*cloud.GCSObject, error)
}

// RawRecordsToGCS archives the raw batch in its input under the batch id
// found at batchIDParam. The records are passed through unchanged so that a
// cleaning step can follow; the stored object is published under
// cloud.GetGCSObjectName().
type RawRecordsToGCS struct {
	cor.BaseCommand
	writer       BatchWriter
	batchIDParam string
}

func NewRawRecordsToGCS(name string, writer BatchWriter, batchIDParam string) *RawRecordsToGCS {
	return &RawRecordsToGCS{BaseCommand: *cor.NewBaseCommand(name), writer: writer, batchIDParam: batchIDParam}
}

func (c *RawRecordsToGCS) IsExecutable(context cor.Context) bool {
	return c.BaseCommand.IsExecutable(context) && context.Get(c.batchIDParam) != nil
}

func (c *RawRecordsToGCS) Execute(context cor.Context) {
	records, ok := context.Get(c.GetInputParam()).([]model.RawRecord)
	if !ok {
		c.Fail(context, fmt.Errorf("expected []model.RawRecord, got %T", context.Get(c.GetInputParam())))
		return
	}
	batchID := fmt.Sprint(context.Get(c.batchIDParam))

	obj, err := c.writer.Write(context.GetContext(), batchID, records)
	if err != nil {
		c.Fail(context, fmt.Errorf("failed to archive batch %s: %w", batchID, err))
		return
	}
	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(cloud.GetGCSObjectName(), obj)
	context.Add(c.GetOutputParam(), records)
}
