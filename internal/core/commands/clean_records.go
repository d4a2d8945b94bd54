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
	"log/slog"
	"time"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/cor"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/normalize"
)

// CleanRecords cleans a whole batch of raw records in one step, splitting it
// across partitions that are cleaned concurrently. One cor.Stat is recorded
// per stage with row counts summed over the partitions.
type CleanRecords struct {
	cor.BaseCommand
	partitions int
}

// NewCleanRecords creates the batch cleaning command.
//
// Inputs:
//   - name: The command name, used for its span and metrics.
//   - partitions: How many partitions to clean concurrently. Values below 2
//     clean the batch in a single pass.
//
// Outputs:
//   - *CleanRecords: A command reading []model.RawRecord from its input
//     parameter and writing the clean *model.Table to its output parameter.
func NewCleanRecords(name string, partitions int) *CleanRecords {
	return &CleanRecords{BaseCommand: *cor.NewBaseCommand(name), partitions: partitions}
}

func (c *CleanRecords) Execute(context cor.Context) {
	records, ok := context.Get(c.GetInputParam()).([]model.RawRecord)
	if !ok {
		c.Fail(context, fmt.Errorf("expected []model.RawRecord, got %T", context.Get(c.GetInputParam())))
		return
	}

	start := time.Now()
	table, stats, err := normalize.CleanPartitioned(context.GetContext(), records, c.partitions)
	if err != nil {
		c.Fail(context, fmt.Errorf("failed to clean batch of %d records: %w", len(records), err))
		return
	}
	for _, s := range stats.Stages {
		context.AddStat(cor.Stat{Command: s.Stage, RowsIn: s.RowsIn, RowsOut: s.RowsOut, Columns: s.Columns})
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	slog.InfoContext(context.GetContext(), "cleaned batch",
		"rows_in", stats.RowsIn,
		"rows_out", stats.RowsOut,
		"rejected", stats.Rejected(),
		"partitions", c.partitions,
		"elapsed", time.Since(start))
	context.Add(c.GetOutputParam(), table)
}
