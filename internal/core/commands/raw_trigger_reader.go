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

// Package commands holds the concrete cor.Command implementations the
// ingestion and cleaning workflows are assembled from.
//
// An ingestion run moves a batch through these shapes:
//
//	string (GCS notification) -> *cloud.GCSObject -> []model.RawRecord
//	-> *model.Table -> []*model.Movie -> BigQuery / relational store
//
// Each command reads its input from GetInputParam and writes its result to
// GetOutputParam, so the chain pipes them together.
package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/cor"
)

// RawTriggerToGCSObject parses a Cloud Storage notification and emits the
// object it names. Objects that are not raw batches below prefix produce no
// output, which ends the run without an error so the message is acked.
type RawTriggerToGCSObject struct {
	cor.BaseCommand
	prefix string
}

func NewRawTriggerToGCSObject(name string, prefix string) *RawTriggerToGCSObject {
	return &RawTriggerToGCSObject{BaseCommand: *cor.NewBaseCommand(name), prefix: prefix}
}

func (c *RawTriggerToGCSObject) Execute(context cor.Context) {
	in, ok := context.Get(c.GetInputParam()).(string)
	if !ok {
		c.Fail(context, fmt.Errorf("expected notification text, got %T", context.Get(c.GetInputParam())))
		return
	}

	var out cloud.GCSPubSubNotification
	if err := json.Unmarshal([]byte(in), &out); err != nil {
		c.Fail(context, fmt.Errorf("failed to unmarshal GCS notification: %w", err))
		return
	}
	if !cloud.IsRawBatch(c.prefix, out.Name) {
		slog.InfoContext(context.GetContext(), "ignoring object that is not a raw batch", "bucket", out.Bucket, "name", out.Name)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	msg := &cloud.GCSObject{Bucket: out.Bucket, Name: out.Name, MIMEType: out.ContentType}
	context.Add(cloud.GetGCSObjectName(), msg)
	context.Add(c.GetOutputParam(), msg)
}
