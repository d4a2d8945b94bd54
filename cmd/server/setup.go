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

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/api"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/cache"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/services"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/workflow"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/store"
)

type StateManager struct {
	config   *cloud.Config
	cloud    *cloud.ServiceClients
	store    *store.MovieStore
	cache    *cache.ReportCache
	handlers *api.Handlers
}

var state = &StateManager{}

func SetupOS() (err error) {
	if os.Getenv(cloud.EnvConfigFilePrefix) == "" {
		if err = os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if os.Getenv(cloud.EnvConfigRuntime) == "" {
		err = os.Setenv(cloud.EnvConfigRuntime, "local")
	}
	return err
}

func GetConfig() *cloud.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup os: %v\n", err)
		}
		config := cloud.NewConfig()
		if err := cloud.LoadConfig(config); err != nil {
			log.Fatalf("failed to load config: %v\n", err)
		}
		state.config = config
	}
	return state.config
}

// InitState opens the store and cache, and when Google Cloud is configured
// connects the clients and starts the raw batch listeners.
func InitState(ctx context.Context) error {
	config := GetConfig()

	if err := config.ValidateStore(); err != nil {
		return err
	}
	movieStore, err := store.Open(ctx, config.Store)
	if err != nil {
		return err
	}
	state.store = movieStore

	if config.Cache.Enabled {
		reportCache, err := cache.New(ctx, config.Cache)
		if err != nil {
			// reports still work uncached
			slog.Warn("report cache disabled", "error", err)
		} else {
			state.cache = reportCache
		}
	}

	state.handlers = &api.Handlers{
		Reports:        &services.ReportService{Source: movieStore, Cache: state.cache},
		Cleaner:        workflow.NewCleaningWorkflow(),
		MaxUploadBytes: config.Server.MaxUploadBytes,
	}

	if err := config.ValidateCloud(); err != nil {
		slog.Warn("google cloud not configured, ingestion listeners disabled", "reason", err)
		return nil
	}
	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to connect to google cloud: %w", err)
	}
	state.cloud = cloudClients
	state.handlers.Archive = cloudClients.RawArchive

	SetupListeners(ctx, config, cloudClients)
	return nil
}

// Close releases everything InitState opened.
func (s *StateManager) Close() {
	if s.cloud != nil {
		s.cloud.Close()
	}
	if err := s.cache.Close(); err != nil {
		slog.Warn("failed to close report cache", "error", err)
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			slog.Warn("failed to close movie store", "error", err)
		}
	}
}
