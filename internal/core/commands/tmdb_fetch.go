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
	"context"
	"fmt"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/cor"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
)

// Fetcher retrieves raw records for catalog ids. *tmdb.Client implements it.
type Fetcher interface {
	FetchAll(ctx context.Context, ids []int) ([]model.RawRecord, error)
}

// FetchRawRecords turns a list of catalog ids into raw records.
type FetchRawRecords struct {
	cor.BaseCommand
	fetcher Fetcher
}

func NewFetchRawRecords(name string, fetcher Fetcher) *FetchRawRecords {
	return &FetchRawRecords{BaseCommand: *cor.NewBaseCommand(name), fetcher: fetcher}
}

// Execute fetches every id in one batch.
//
// Inputs:
//   - context: The workflow context. The input parameter must hold the ids as
//     []int.
//
// Outputs:
//   - The []model.RawRecord returned by the fetcher, under the output
//     parameter. Any fetch error fails the command and nothing is written.
func (c *FetchRawRecords) Execute(context cor.Context) {
	ids, ok := context.Get(c.GetInputParam()).([]int)
	if !ok {
		c.Fail(context, fmt.Errorf("expected []int, got %T", context.Get(c.GetInputParam())))
		return
	}
	records, err := c.fetcher.FetchAll(context.GetContext(), ids)
	if err != nil {
		c.Fail(context, fmt.Errorf("failed to fetch %d movies: %w", len(ids), err))
		return
	}
	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), records)
}
