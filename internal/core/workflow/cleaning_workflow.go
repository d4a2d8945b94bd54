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

// Package workflow assembles commands into the chains the services run.
package workflow

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/commands"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/cor"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/normalize"
)

// CleaningWorkflow runs the cleaning stages one command per stage, so every
// stage gets its own span, duration histogram and row-count stat.
type CleaningWorkflow struct {
	cor.BaseCommand
	chain *cor.BaseChain
}

func NewCleaningWorkflow() *CleaningWorkflow {
	w := &CleaningWorkflow{BaseCommand: *cor.NewBaseCommand("cleaning-workflow")}
	w.initializeChain()
	return w
}

func (w *CleaningWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewRawRecordsToTable("raw-records-to-table"))
	for _, stage := range normalize.Stages() {
		out.AddCommand(commands.NewStageCommand(stage))
	}
	w.chain = out
}

func (w *CleaningWorkflow) IsExecutable(context cor.Context) bool {
	return w.chain.IsExecutable(context)
}

func (w *CleaningWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// Clean runs the workflow over records and returns the clean table with the
// per-stage statistics. The error is the first one recorded, in stage order.
func (w *CleaningWorkflow) Clean(ctx context.Context, records []model.RawRecord) (*model.Table, []cor.Stat, error) {
	chCtx := cor.NewBaseContext()
	defer chCtx.Close()
	chCtx.SetContext(ctx)
	chCtx.Add(cor.CtxIn, records)

	w.Execute(chCtx)

	if err := firstError(w.chain, chCtx); err != nil {
		return nil, chCtx.GetStats(), err
	}
	table, ok := chCtx.Get(cor.CtxIn).(*model.Table)
	if !ok {
		return nil, chCtx.GetStats(), errors.New("cleaning workflow produced no table")
	}
	slog.DebugContext(ctx, "cleaning workflow finished", "rows_in", len(records), "rows_out", table.Len())
	return table, chCtx.GetStats(), nil
}

// firstError returns the error of the earliest command that recorded one.
func firstError(chain *cor.BaseChain, chCtx cor.Context) error {
	if !chCtx.HasErrors() {
		return nil
	}
	errs := chCtx.GetErrors()
	for _, c := range chain.Commands() {
		if err, ok := errs[c.GetName()]; ok {
			return err
		}
	}
	for _, err := range errs {
		return err
	}
	return nil
}
