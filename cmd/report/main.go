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

// Command report prints the movie analytics report as markdown. The catalog
// comes from a raw batch file (-input), the configured store or BigQuery.
//
//	report -input raw/2024-10-11.json > report.md
//	report -source bigquery
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"cloud.google.com/go/bigquery"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/services"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/workflow"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/render"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/store"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/telemetry"
)

const (
	SourceStore    = "store"
	SourceBigQuery = "bigquery"
)

func main() {
	input := flag.String("input", "", "raw batch JSON file (optionally gzip) to clean and report on")
	source := flag.String("source", SourceStore, "catalog source when -input is empty: store or bigquery")
	minMovies := flag.Int("min-movies", services.DefaultMinDirectorMovies, "minimum movies for the director ranking")
	width := flag.Int("width", render.DefaultMaxCellWidth, "maximum cell width")
	flag.Parse()

	if os.Getenv(cloud.EnvConfigFilePrefix) == "" {
		_ = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	}
	if os.Getenv(cloud.EnvConfigRuntime) == "" {
		_ = os.Setenv(cloud.EnvConfigRuntime, "local")
	}
	config := cloud.NewConfig()
	if err := cloud.LoadConfig(config); err != nil {
		log.Fatalf("failed to load config: %v\n", err)
	}
	// no trace export for a one-shot run; stdout carries the report, logs go to stderr
	config.Telemetry.Exporter = telemetry.ExporterNone
	level, err := telemetry.ParseLevel(config.Telemetry.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	slog.SetDefault(slog.New(telemetry.NewHandler(os.Stderr, level)))

	ctx := context.Background()
	shutdown, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	src, closeSource, err := openSource(ctx, config, *input, *source)
	if err != nil {
		slog.Error("failed to open catalog", "error", err)
		os.Exit(1)
	}
	defer closeSource()

	reports := &services.ReportService{Source: src}
	if err := WriteReport(ctx, os.Stdout, reports, *minMovies, render.WithMaxCellWidth(*width)); err != nil {
		slog.Error("failed to write report", "error", err)
		os.Exit(1)
	}
}

func openSource(ctx context.Context, config *cloud.Config, input, source string) (services.MovieSource, func(), error) {
	if input != "" {
		s, err := LoadFile(ctx, input)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}
	switch source {
	case SourceStore:
		s, err := store.Open(ctx, config.Store)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case SourceBigQuery:
		if err := config.ValidateCloud(); err != nil {
			return nil, nil, err
		}
		client, err := bigquery.NewClient(ctx, config.Application.GoogleProjectId)
		if err != nil {
			return nil, nil, err
		}
		svc := &services.MovieService{
			BigqueryClient: client,
			DatasetName:    config.BigQueryDataSource.DatasetName,
			MoviesTable:    config.BigQueryDataSource.MoviesTable,
		}
		return svc, func() { _ = client.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown source %q", source)
}

// LoadFile cleans a raw batch file into a private in-memory store.
func LoadFile(ctx context.Context, path string) (*store.MovieStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	records, err := cloud.DecodeRawBatch(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	table, _, err := workflow.NewCleaningWorkflow().Clean(ctx, records)
	if err != nil {
		return nil, err
	}
	movies, err := model.MoviesFromTable(table)
	if err != nil {
		return nil, err
	}

	s, err := store.Open(ctx, cloud.Store{Driver: "sqlite", DSN: "file:report?mode=memory&cache=shared"})
	if err != nil {
		return nil, err
	}
	if err := s.ReplaceAll(ctx, movies); err != nil {
		_ = s.Close()
		return nil, err
	}
	slog.Info("loaded raw batch", "file", path, "records", len(records), "movies", len(movies))
	return s, nil
}

// WriteReport renders every report section in a fixed order.
func WriteReport(ctx context.Context, w io.Writer, reports *services.ReportService, minMovies int, opts ...render.Option) error {
	summary, err := reports.Summary(ctx)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "# Movie analytics\n\n"+
		"- movies: %d\n- franchise movies: %d in %d franchises\n- directors: %d\n"+
		"- total budget: %s MUSD\n- total revenue: %s MUSD\n- released: %s to %s\n\n",
		summary.Movies, summary.FranchiseMovies, summary.Franchises, summary.Directors,
		render.FormatValue(summary.TotalBudgetMUSD), render.FormatValue(summary.TotalRevenueMUSD),
		render.FormatValue(summary.FirstRelease), render.FormatValue(summary.LastRelease)); err != nil {
		return err
	}

	rankings, err := reports.Rankings(ctx)
	if err != nil {
		return err
	}
	for _, r := range rankings {
		if err := render.Section(w, r.Title, r.Table, opts...); err != nil {
			return err
		}
	}

	sections := []struct {
		title string
		build func() (*model.Table, error)
	}{
		{"Bruce Willis in Science Fiction Action", func() (*model.Table, error) {
			return reports.CastGenreSearch(ctx, "Bruce Willis", "Science Fiction", "Action")
		}},
		{"Uma Thurman directed by Quentin Tarantino", func() (*model.Table, error) {
			return reports.CastDirectorSearch(ctx, "Uma Thurman", "Quentin Tarantino")
		}},
		{"Franchise vs standalone", func() (*model.Table, error) {
			return reports.FranchiseComparison(ctx)
		}},
		{"Top franchises", func() (*model.Table, error) {
			return reports.TopFranchises(ctx)
		}},
		{"Top directors", func() (*model.Table, error) {
			return reports.TopDirectors(ctx, minMovies)
		}},
	}
	for _, s := range sections {
		t, err := s.build()
		if err != nil {
			return fmt.Errorf("%s: %w", s.title, err)
		}
		if err := render.Section(w, s.title, t, opts...); err != nil {
			return err
		}
	}
	return nil
}
