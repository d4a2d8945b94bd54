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
	"log/slog"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/cor"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
)

// MovieSink is anything clean movies can be saved to.
type MovieSink interface {
	SaveMovies(ctx context.Context, movies []*model.Movie) error
}

// Invalidator drops derived data after the movie set changes.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// MoviesPersistToStore saves clean movies through a MovieSink and then
// invalidates cached reports, if an invalidator was given. A failed
// invalidation is logged but does not fail the run.
type MoviesPersistToStore struct {
	cor.BaseCommand
	sink        MovieSink
	invalidator Invalidator
}

// NewMoviesPersistToStore creates the command that saves a clean batch.
//
// Inputs:
//   - name: The command name.
//   - sink: Where the movies are upserted, normally a *store.Store.
//   - invalidator: Optional. Called after a successful save, normally the
//     report cache.
//
// Outputs:
//   - *MoviesPersistToStore: A command that reads []*model.Movie and passes
//     the same slice on to the next command.
func NewMoviesPersistToStore(name string, sink MovieSink, invalidator Invalidator) *MoviesPersistToStore {
	return &MoviesPersistToStore{BaseCommand: *cor.NewBaseCommand(name), sink: sink, invalidator: invalidator}
}

func (s *MoviesPersistToStore) Execute(context cor.Context) {
	movies, ok := context.Get(s.GetInputParam()).([]*model.Movie)
	if !ok {
		s.Fail(context, fmt.Errorf("expected []*model.Movie, got %T", context.Get(s.GetInputParam())))
		return
	}
	if err := s.sink.SaveMovies(context.GetContext(), movies); err != nil {
		s.Fail(context, fmt.Errorf("failed to save %d movies: %w", len(movies), err))
		return
	}
	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(context.GetContext()); err != nil {
			slog.WarnContext(context.GetContext(), "failed to invalidate cached reports", "error", err)
		}
	}

	s.GetSuccessCounter().Add(context.GetContext(), 1)
	slog.InfoContext(context.GetContext(), "persisted movies to store", "rows", len(movies))
	context.Add(s.GetOutputParam(), movies)
}
