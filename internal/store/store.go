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

// Package store keeps clean movies in a relational database through gorm.
// SQLite serves local runs and tests, PostgreSQL serves deployments.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// BatchSize is the number of rows per INSERT statement.
const BatchSize = 100

// ErrNotFound is returned when a movie id is not stored.
var ErrNotFound = model.ErrMovieNotFound

// MovieStore reads and writes clean movies.
type MovieStore struct {
	db *gorm.DB
}

// Open connects to the configured database and migrates the schema.
func Open(ctx context.Context, config cloud.Store) (*MovieStore, error) {
	var dialector gorm.Dialector
	switch config.Driver {
	case "sqlite":
		dialector = sqlite.Open(config.DSN)
	case "postgres":
		dialector = postgres.Open(config.DSN)
	default:
		return nil, fmt.Errorf("%w: %q", cloud.ErrInvalidStore, config.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", config.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if config.Driver == "sqlite" {
		// a single connection keeps in-memory databases alive and avoids
		// SQLITE_BUSY on concurrent writers
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	slog.InfoContext(ctx, "movie store ready", "driver", config.Driver)
	return s, nil
}

// New wraps an open gorm connection.
func New(db *gorm.DB) *MovieStore {
	return &MovieStore{db: db}
}

func (s *MovieStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&MovieRecord{}); err != nil {
		return fmt.Errorf("failed to migrate movie store: %w", err)
	}
	return nil
}

// SaveMovies upserts movies by id. Existing rows are overwritten column by
// column.
func (s *MovieStore) SaveMovies(ctx context.Context, movies []*model.Movie) error {
	if len(movies) == 0 {
		return nil
	}
	records := toRecords(movies)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).CreateInBatches(records, BatchSize).Error
		if err != nil {
			return fmt.Errorf("failed to upsert %d movies: %w", len(records), err)
		}
		return nil
	})
}

// ReplaceAll swaps the stored catalog for movies in one transaction.
func (s *MovieStore) ReplaceAll(ctx context.Context, movies []*model.Movie) error {
	records := toRecords(movies)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&MovieRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear movie store: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(records, BatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert %d movies: %w", len(records), err)
		}
		return nil
	})
}

// Movie loads one movie by id.
func (s *MovieStore) Movie(ctx context.Context, id int64) (*model.Movie, error) {
	var r MovieRecord
	err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load movie %d: %w", id, err)
	}
	return r.movie(), nil
}

// Movies loads every stored movie ordered by id.
func (s *MovieStore) Movies(ctx context.Context) ([]*model.Movie, error) {
	var records []MovieRecord
	if err := s.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load movies: %w", err)
	}
	movies := make([]*model.Movie, len(records))
	for i, r := range records {
		movies[i] = r.movie()
	}
	return movies, nil
}

// Table returns the stored catalog as a clean table ordered by id.
func (s *MovieStore) Table(ctx context.Context) (*model.Table, error) {
	movies, err := s.Movies(ctx)
	if err != nil {
		return nil, err
	}
	return model.TableFromMovies(movies), nil
}

func (s *MovieStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&MovieRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return n, nil
}

func (s *MovieStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toRecords(movies []*model.Movie) []MovieRecord {
	records := make([]MovieRecord, len(movies))
	for i, m := range movies {
		records[i] = recordFromMovie(m)
	}
	return records
}
