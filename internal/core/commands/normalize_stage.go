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

// StageCommand runs one cleaning stage over the table in its input and
// records how many rows went in and came out.
type StageCommand struct {
	cor.BaseCommand
	stage normalize.Stage
}

func NewStageCommand(stage normalize.Stage) *StageCommand {
	return &StageCommand{BaseCommand: *cor.NewBaseCommand(stage.Name), stage: stage}
}

func (c *StageCommand) Execute(context cor.Context) {
	in, ok := context.Get(c.GetInputParam()).(*model.Table)
	if !ok {
		c.Fail(context, fmt.Errorf("expected *model.Table, got %T", context.Get(c.GetInputParam())))
		return
	}

	start := time.Now()
	out, err := c.stage.Apply(in)
	if err != nil {
		c.Fail(context, fmt.Errorf("stage %s: %w", c.stage.Name, err))
		return
	}
	stat := cor.Stat{
		Command:  c.GetName(),
		RowsIn:   in.Len(),
		RowsOut:  out.Len(),
		Columns:  len(out.Columns()),
		Duration: time.Since(start),
	}
	context.AddStat(stat)
	if stat.RowsOut < stat.RowsIn {
		slog.DebugContext(context.GetContext(), "stage removed rows", "stage", c.GetName(), "rows_in", stat.RowsIn, "rows_out", stat.RowsOut)
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), out)
}
