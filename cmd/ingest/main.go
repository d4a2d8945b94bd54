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

// Command ingest fetches movies from TMDB, archives the raw batch and writes
// the cleaned table to the configured stores.
//
//	ingest -ids 299534,19995 -local
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/cache"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/commands"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/workflow"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/store"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/telemetry"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/tmdb"
)

func main() {
	ids := flag.String("ids", "", "comma separated TMDB movie ids; defaults to tmdb.movie_ids")
	local := flag.Bool("local", false, "skip Cloud Storage and BigQuery and only write the local store")
	batch := flag.String("batch", "", "batch id; generated when empty")
	flag.Parse()

	if err := setupOS(); err != nil {
		log.Fatalf("failed to setup os: %v\n", err)
	}
	config := cloud.NewConfig()
	if err := cloud.LoadConfig(config); err != nil {
		log.Fatalf("failed to load config: %v\n", err)
	}
	telemetry.SetupLogging(config)

	ctx := context.Background()
	shutdown, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	movieIDs, err := parseIDs(*ids, config.TMDB.MovieIDs)
	if err != nil {
		log.Fatal(err)
	}
	batchID := *batch
	if batchID == "" {
		batchID = newBatchID(time.Now())
	}

	if err := run(ctx, config, batchID, movieIDs, *local); err != nil {
		slog.Error("ingestion failed", "batch", batchID, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, config *cloud.Config, batchID string, ids []int, local bool) error {
	if err := config.ValidateFetch(); err != nil {
		return err
	}
	client, err := tmdb.NewClient(config.TMDB)
	if err != nil {
		return err
	}

	movieStore, err := store.Open(ctx, config.Store)
	if err != nil {
		return err
	}
	defer movieStore.Close()

	var reportCache *cache.ReportCache
	if config.Cache.Enabled {
		if reportCache, err = cache.New(ctx, config.Cache); err != nil {
			slog.Warn("report cache unavailable, cached reports may be stale", "error", err)
		} else {
			defer reportCache.Close()
		}
	}

	var archive commands.BatchWriter
	var bq *bigquery.Client
	if !local {
		clients, err := cloud.NewCloudServiceClients(ctx, config)
		if err != nil {
			return fmt.Errorf("failed to connect to google cloud (use -local to skip): %w", err)
		}
		defer clients.Close()
		archive = clients.RawArchive
		bq = clients.BiqQueryClient
	}

	persist := workflow.PersistCommands(config, bq, movieStore, reportCache)
	table, stats, err := workflow.NewFetchWorkflow(config, client, archive, persist...).Run(ctx, batchID, ids)
	if err != nil {
		return err
	}
	for _, s := range stats {
		slog.Info("stage", "command", s.Command, "rows_in", s.RowsIn, "rows_out", s.RowsOut, "duration", s.Duration)
	}
	slog.Info("ingested batch", "batch", batchID, "requested", len(ids), "movies", table.Len())
	return nil
}

func setupOS() error {
	if os.Getenv(cloud.EnvConfigFilePrefix) == "" {
		if err := os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if os.Getenv(cloud.EnvConfigRuntime) == "" {
		return os.Setenv(cloud.EnvConfigRuntime, "local")
	}
	return nil
}

// newBatchID is date-prefixed so archived batches list in fetch order.
func newBatchID(now time.Time) string {
	return now.UTC().Format("2006-01-02") + "-" + uuid.NewString()
}

func parseIDs(flagValue string, defaults []int) ([]int, error) {
	if strings.TrimSpace(flagValue) == "" {
		if len(defaults) == 0 {
			return nil, fmt.Errorf("no movie ids: pass -ids or set tmdb.movie_ids")
		}
		return defaults, nil
	}
	var out []int
	for _, part := range strings.Split(flagValue, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid movie id %q: %w", part, err)
		}
		out = append(out, id)
	}
	return out, nil
}
