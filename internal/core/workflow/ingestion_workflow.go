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

package workflow

import (
	"context"
	"log/slog"

	"cloud.google.com/go/bigquery"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/commands"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/cor"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
)

// Context keys published by the ingestion chains.
const (
	BatchIDParam    = "__batch_id__"
	CleanTableParam = "__clean_table__"
)

// PersistCommands returns the sink commands for the clean movies: BigQuery
// when a client is given, then the relational store when a sink is given.
func PersistCommands(config *cloud.Config, bq *bigquery.Client, sink commands.MovieSink, invalidator commands.Invalidator) []cor.Command {
	var out []cor.Command
	if bq != nil {
		out = append(out, commands.NewMoviesPersistToBigQuery(
			"write-to-bigquery",
			bq,
			config.BigQueryDataSource.DatasetName,
			config.BigQueryDataSource.MoviesTable))
	}
	if sink != nil {
		out = append(out, commands.NewMoviesPersistToStore("write-to-store", sink, invalidator))
	}
	return out
}

// IngestionWorkflow cleans a raw batch announced by a Cloud Storage
// notification and persists the result. It is the command behind the raw
// batch Pub/Sub listener.
type IngestionWorkflow struct {
	cor.BaseCommand
	config  *cloud.Config
	reader  commands.BatchReader
	persist []cor.Command
	chain   *cor.BaseChain
}

func NewIngestionWorkflow(config *cloud.Config, reader commands.BatchReader, persist ...cor.Command) *IngestionWorkflow {
	w := &IngestionWorkflow{
		BaseCommand: *cor.NewBaseCommand("ingestion-workflow"),
		config:      config,
		reader:      reader,
		persist:     persist,
	}
	w.initializeChain()
	return w
}

func (w *IngestionWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewRawTriggerToGCSObject("raw-trigger-to-gcs-object", w.config.Storage.RawPrefix))
	out.AddCommand(commands.NewGCSToRawRecords("gcs-to-raw-records", w.reader))
	out.AddCommand(commands.NewCleanRecords("clean-records", w.config.Pipeline.Partitions))
	out.AddCommand(commands.NewTableToMovies("table-to-movies", CleanTableParam))
	for _, c := range w.persist {
		out.AddCommand(c)
	}
	w.chain = out
}

func (w *IngestionWorkflow) IsExecutable(context cor.Context) bool {
	return w.chain.IsExecutable(context)
}

func (w *IngestionWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
	logStats(context, w.GetName())
}

// FetchWorkflow pulls movies from the catalog API, archives the raw batch
// and then cleans and persists it in the same run.
type FetchWorkflow struct {
	cor.BaseCommand
	config  *cloud.Config
	fetcher commands.Fetcher
	archive commands.BatchWriter
	persist []cor.Command
	chain   *cor.BaseChain
}

// NewFetchWorkflow builds the chain. archive may be nil to skip archiving.
func NewFetchWorkflow(config *cloud.Config, fetcher commands.Fetcher, archive commands.BatchWriter, persist ...cor.Command) *FetchWorkflow {
	w := &FetchWorkflow{
		BaseCommand: *cor.NewBaseCommand("fetch-workflow"),
		config:      config,
		fetcher:     fetcher,
		archive:     archive,
		persist:     persist,
	}
	w.initializeChain()
	return w
}

func (w *FetchWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewFetchRawRecords("fetch-raw-records", w.fetcher))
	if w.archive != nil {
		out.AddCommand(commands.NewRawRecordsToGCS("raw-records-to-gcs", w.archive, BatchIDParam))
	}
	out.AddCommand(commands.NewCleanRecords("clean-records", w.config.Pipeline.Partitions))
	out.AddCommand(commands.NewTableToMovies("table-to-movies", CleanTableParam))
	for _, c := range w.persist {
		out.AddCommand(c)
	}
	w.chain = out
}

func (w *FetchWorkflow) IsExecutable(context cor.Context) bool {
	return w.chain.IsExecutable(context)
}

func (w *FetchWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
	logStats(context, w.GetName())
}

// Run fetches ids as batch batchID and returns the clean table.
func (w *FetchWorkflow) Run(ctx context.Context, batchID string, ids []int) (*model.Table, []cor.Stat, error) {
	chCtx := cor.NewBaseContext()
	defer chCtx.Close()
	chCtx.SetContext(ctx)
	chCtx.Add(BatchIDParam, batchID)
	chCtx.Add(cor.CtxIn, ids)

	w.Execute(chCtx)

	if err := firstError(w.chain, chCtx); err != nil {
		return nil, chCtx.GetStats(), err
	}
	table, _ := chCtx.Get(CleanTableParam).(*model.Table)
	return table, chCtx.GetStats(), nil
}

func logStats(context cor.Context, workflow string) {
	for _, s := range context.GetStats() {
		slog.DebugContext(context.GetContext(), "stage statistics",
			"workflow", workflow,
			"stage", s.Command,
			"rows_in", s.RowsIn,
			"rows_out", s.RowsOut,
			"columns", s.Columns)
	}
}
