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

// Package services exposes the clean movie catalog to the API and the
// command line tools: reading it back from BigQuery or the relational store,
// searching it and computing reports over it.
package services

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
	"google.golang.org/api/iterator"
)

// MovieSource is where clean movies are read back from. Both the BigQuery
// MovieService and store.MovieStore implement it.
type MovieSource interface {
	// Table returns the whole catalog ordered by id.
	Table(ctx context.Context) (*model.Table, error)
	// Movie returns one movie or an error matching model.ErrMovieNotFound.
	Movie(ctx context.Context, id int64) (*model.Movie, error)
}

// MovieService reads clean movies from BigQuery.
type MovieService struct {
	BigqueryClient *bigquery.Client
	DatasetName    string
	MoviesTable    string
}

// GetFQN returns the table name in the project.dataset.table form standard
// SQL expects.
func (s *MovieService) GetFQN() string {
	fqn := s.BigqueryClient.Dataset(s.DatasetName).Table(s.MoviesTable).FullyQualifiedName()
	return strings.Replace(fqn, ":", ".", -1)
}

func (s *MovieService) Movie(ctx context.Context, id int64) (*model.Movie, error) {
	q := s.BigqueryClient.Query(fmt.Sprintf(QryFindMovieById, s.GetFQN()))
	q.Parameters = []bigquery.QueryParameter{{Name: "id", Value: id}}
	itr, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query movie %d: %w", id, err)
	}
	movie := &model.Movie{}
	err = itr.Next(movie)
	if err == iterator.Done {
		return nil, fmt.Errorf("%w: %d", model.ErrMovieNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read movie %d: %w", id, err)
	}
	return movie, nil
}

// Movies loads every clean movie ordered by id.
func (s *MovieService) Movies(ctx context.Context) ([]*model.Movie, error) {
	itr, err := s.BigqueryClient.Query(fmt.Sprintf(QryAllMovies, s.GetFQN())).Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read from BigQuery: %w", err)
	}
	out := make([]*model.Movie, 0, itr.TotalRows)
	for {
		m := &model.Movie{}
		err := itr.Next(m)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return out, fmt.Errorf("failed to iterate results: %w", err)
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *MovieService) Table(ctx context.Context) (*model.Table, error) {
	movies, err := s.Movies(ctx)
	if err != nil {
		return nil, err
	}
	return model.TableFromMovies(movies), nil
}
