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
	"fmt"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
)

// StageStat records the table shape after one stage.
type StageStat struct {
	Stage   string `json:"stage"`
	RowsIn  int    `json:"rows_in"`
	RowsOut int    `json:"rows_out"`
	Columns int    `json:"columns"`
}

// Stats summarizes one cleaning run.
type Stats struct {
	RowsIn  int         `json:"rows_in"`
	RowsOut int         `json:"rows_out"`
	Stages  []StageStat `json:"stages"`
}

// Rejected is the number of input records that did not make it into the
// clean table.
func (s Stats) Rejected() int {
	return s.RowsIn - s.RowsOut
}

// Clean runs every stage over a batch of raw records and returns the clean
// table. The only error is a schema precondition failure.
func Clean(records []model.RawRecord) (*model.Table, Stats, error) {
	return Run(model.FromRecords(records), Stages())
}

// Run applies stages to t in order, stopping at the first error.
func Run(t *model.Table, stages []Stage) (*model.Table, Stats, error) {
	stats := Stats{RowsIn: t.Len(), Stages: make([]StageStat, 0, len(stages))}
	for _, s := range stages {
		in := t.Len()
		out, err := s.Apply(t)
		if err != nil {
			return nil, stats, fmt.Errorf("stage %s: %w", s.Name, err)
		}
		t = out
		stats.Stages = append(stats.Stages, StageStat{Stage: s.Name, RowsIn: in, RowsOut: t.Len(), Columns: len(t.Columns())})
	}
	stats.RowsOut = t.Len()
	return t, stats, nil
}

// Merge folds per-partition statistics into one summary, summing row counts
// stage by stage.
func Merge(parts ...Stats) Stats {
	var merged Stats
	index := make(map[string]int)
	for _, p := range parts {
		merged.RowsIn += p.RowsIn
		merged.RowsOut += p.RowsOut
		for _, s := range p.Stages {
			i, ok := index[s.Stage]
			if !ok {
				index[s.Stage] = len(merged.Stages)
				merged.Stages = append(merged.Stages, s)
				continue
			}
			merged.Stages[i].RowsIn += s.RowsIn
			merged.Stages[i].RowsOut += s.RowsOut
			if s.Columns > merged.Stages[i].Columns {
				merged.Stages[i].Columns = s.Columns
			}
		}
	}
	return merged
}
