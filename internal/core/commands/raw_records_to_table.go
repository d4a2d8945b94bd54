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
	"fmt"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/cor"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
)

// RawRecordsToTable turns a batch of raw records into the table the cleaning
// stages work on.
type RawRecordsToTable struct {
	cor.BaseCommand
}

func NewRawRecordsToTable(name string) *RawRecordsToTable {
	return &RawRecordsToTable{BaseCommand: *cor.NewBaseCommand(name)}
}

func (c *RawRecordsToTable) Execute(context cor.Context) {
	records, ok := context.Get(c.GetInputParam()).([]model.RawRecord)
	if !ok {
		c.Fail(context, fmt.Errorf("expected []model.RawRecord, got %T", context.Get(c.GetInputParam())))
		return
	}
	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), model.FromRecords(records))
}
