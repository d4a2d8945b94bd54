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

	"cloud.google.com/go/bigquery"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/cor"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
)

// InsertBatchSize caps the rows sent in one streaming insert.
const InsertBatchSize = 500

// MoviesPersistToBigQuery streams clean movies into the movies table. Each
// row carries the movie id as its insert id, so a redelivered batch does not
// duplicate rows inside BigQuery's deduplication window.
type MoviesPersistToBigQuery struct {
	cor.BaseCommand
	client  *bigquery.Client
	dataset string
	table   string
}

func NewMoviesPersistToBigQuery(name string, client *bigquery.Client, dataset string, table string) *MoviesPersistToBigQuery {
	return &MoviesPersistToBigQuery{BaseCommand: *cor.NewBaseCommand(name), client: client, dataset: dataset, table: table}
}

func (s *MoviesPersistToBigQuery) Execute(context cor.Context) {
	movies, ok := context.Get(s.GetInputParam()).([]*model.Movie)
	if !ok {
		s.Fail(context, fmt.Errorf("expected []*model.Movie, got %T", context.Get(s.GetInputParam())))
		return
	}

	inserter := s.client.Dataset(s.dataset).Table(s.table).Inserter()
	for start := 0; start < len(movies); start += InsertBatchSize {
		end := min(start+InsertBatchSize, len(movies))
		if err := inserter.Put(context.GetContext(), movies[start:end]); err != nil {
			s.Fail(context, fmt.Errorf("bigquery insert failed for rows %d-%d: %w", start, end-1, err))
			return
		}
	}

	s.GetSuccessCounter().Add(context.GetContext(), 1)
	slog.InfoContext(context.GetContext(), "persisted movies to bigquery", "dataset", s.dataset, "table", s.table, "rows", len(movies))
	context.Add(s.GetOutputParam(), movies)
}
