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

	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/cor"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
)

// TableToMovies converts a clean table into typed movies for persistence. The
// table is also published under tableParam, when set, for callers that want
// the tabular result.
type TableToMovies struct {
	cor.BaseCommand
	tableParam string
}

func NewTableToMovies(name string, tableParam string) *TableToMovies {
	return &TableToMovies{BaseCommand: *cor.NewBaseCommand(name), tableParam: tableParam}
}

func (c *TableToMovies) Execute(context cor.Context) {
	table, ok := context.Get(c.GetInputParam()).(*model.Table)
	if !ok {
		c.Fail(context, fmt.Errorf("expected *model.Table, got %T", context.Get(c.GetInputParam())))
		return
	}
	if c.tableParam != "" {
		context.Add(c.tableParam, table)
	}

	movies, err := model.MoviesFromTable(table)
	if err != nil {
		c.Fail(context, fmt.Errorf("failed to convert clean table: %w", err))
		return
	}
	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), movies)
}
