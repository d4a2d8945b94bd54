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

package normalize

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
	"github.com/sourcegraph/conc/pool"
)

type partitionResult struct {
	table *model.Table
	stats Stats
}

// CleanPartitioned cleans a batch by splitting it into independent partitions
// that are cleaned concurrently and then stitched back together. Records are
// partitioned by id so that duplicates always meet in the same partition, and
// the result is identical to Clean.
func CleanPartitioned(ctx context.Context, records []model.RawRecord, partitions int) (*model.Table, Stats, error) {
	full := model.FromRecords(records)
	if partitions <= 1 || full.Len() < 2 {
		return Run(full, Stages())
	}
	if _, err := ValidateSchema(full); err != nil {
		return nil, Stats{RowsIn: full.Len()}, err
	}

	stages := partitionStages()
	p := pool.NewWithResults[partitionResult]().
		WithContext(ctx).
		WithCancelOnError().
		WithMaxGoroutines(partitions)
	for _, part := range split(full, partitions) {
		part := part
		p.Go(func(ctx context.Context) (partitionResult, error) {
			if err := ctx.Err(); err != nil {
				return partitionResult{}, err
			}
			t, stats, err := Run(part, stages)
			return partitionResult{table: t, stats: stats}, err
		})
	}
	results, err := p.Wait()
	if err != nil {
		return nil, Stats{RowsIn: full.Len()}, err
	}

	tables := make([]*model.Table, 0, len(results))
	parts := make([]Stats, 0, len(results))
	for _, r := range results {
		tables = append(tables, r.table)
		parts = append(parts, r.stats)
	}
	merged := model.Concat(tables...).SortByPosition()
	merged = ResetPositions(ProjectCanonicalColumns(merged))

	stats := Merge(parts...)
	stats.RowsIn = full.Len()
	stats.RowsOut = merged.Len()
	return merged, stats, nil
}

// partitionStages drops the batch-level stages: the schema is validated once
// for the whole batch and positions are reset after the merge.
func partitionStages() []Stage {
	var out []Stage
	for _, s := range Stages() {
		if s.Name == StageValidateSchema || s.Name == StageResetPositions {
			continue
		}
		out = append(out, s)
	}
	return out
}

func split(t *model.Table, n int) []*model.Table {
	buckets := make([][]model.Row, n)
	for _, r := range t.Rows() {
		k := partitionKey(r.Get(model.FieldID), n)
		buckets[k] = append(buckets[k], r)
	}
	out := make([]*model.Table, 0, n)
	for _, rows := range buckets {
		if len(rows) > 0 {
			out = append(out, model.NewTable(t.Columns(), rows))
		}
	}
	return out
}

func partitionKey(id any, n int) int {
	i, ok := ToID(id).(int64)
	if !ok {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(i, 10)))
	return int(h.Sum32() % uint32(n))
}
