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

// Package cloud holds the application configuration and everything that talks
// to Google Cloud directly: service clients, the raw batch archive in Cloud
// Storage and the Pub/Sub listener that triggers ingestion.
package cloud

import (
	"errors"
	"fmt"
	"time"
)

// Duration is a time.Duration that decodes from TOML strings such as "10s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// BigQueryDataSource names the dataset and table holding clean movies.
type BigQueryDataSource struct {
	DatasetName string `toml:"dataset"`
	MoviesTable string `toml:"movies_table"`
}

// TopicSubscription is one Pub/Sub subscription the server listens on.
type TopicSubscription struct {
	Name             string `toml:"name"`
	DeadLetterTopic  string `toml:"dead_letter_topic"`
	TimeoutInSeconds int    `toml:"timeout_in_seconds"`
}

// Storage describes where raw batches are archived.
type Storage struct {
	RawBucket string `toml:"raw_bucket"`
	RawPrefix string `toml:"raw_prefix"`
	Compress  bool   `toml:"compress"`
}

// TMDB configures the catalog fetch client.
type TMDB struct {
	BaseURL           string   `toml:"base_url"`
	APIKey            string   `toml:"api_key"`
	Language          string   `toml:"language"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	Concurrency       int      `toml:"concurrency"`
	Timeout           Duration `toml:"timeout"`
	MovieIDs          []int    `toml:"movie_ids"`
}

// Pipeline tunes the cleaning run.
type Pipeline struct {
	Partitions int `toml:"partitions"`
}

// Store configures the relational movie store.
type Store struct {
	Driver string `toml:"driver"` // "sqlite" or "postgres"
	DSN    string `toml:"dsn"`
}

// Cache configures the redis report cache.
type Cache struct {
	Enabled bool     `toml:"enabled"`
	Addr    string   `toml:"addr"`
	DB      int      `toml:"db"`
	TTL     Duration `toml:"ttl"`
}

// Server configures the HTTP API.
type Server struct {
	Port           string   `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
	MaxUploadBytes int64    `toml:"max_upload_bytes"`
}

// Telemetry selects the exporter: "gcp" or "none".
type Telemetry struct {
	Exporter string `toml:"exporter"`
	LogLevel string `toml:"log_level"`
}

type Config struct {
	Application struct {
		Name                      string `toml:"name"`
		GoogleProjectId           string `toml:"google_project_id"`
		GoogleLocation            string `toml:"location"`
		SignerServiceAccountEmail string `toml:"signer_service_account_email"`
	} `toml:"application"`
	Storage            Storage                      `toml:"storage"`
	BigQueryDataSource BigQueryDataSource           `toml:"big_query_data_source"`
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"`
	TMDB               TMDB                         `toml:"tmdb"`
	Pipeline           Pipeline                     `toml:"pipeline"`
	Store              Store                        `toml:"store"`
	Cache              Cache                        `toml:"cache"`
	Server             Server                       `toml:"server"`
	Telemetry          Telemetry                    `toml:"telemetry"`
}

// NewConfig returns a config with defaults that the TOML files override.
func NewConfig() *Config {
	c := &Config{
		TopicSubscriptions: make(map[string]TopicSubscription),
	}
	c.Application.Name = "movie-analytics"
	c.TMDB.BaseURL = "https://api.themoviedb.org/3"
	c.TMDB.Language = "en-US"
	c.TMDB.RequestsPerSecond = 1 / 0.22
	c.TMDB.Concurrency = 1
	c.TMDB.Timeout = Duration{10 * time.Second}
	c.Pipeline.Partitions = 1
	c.Store.Driver = "sqlite"
	c.Store.DSN = "file:movies.db"
	c.Cache.TTL = Duration{15 * time.Minute}
	c.Server.Port = "8080"
	c.Server.MaxUploadBytes = 32 << 20
	c.Telemetry.Exporter = "gcp"
	c.Telemetry.LogLevel = "info"
	return c
}

var (
	ErrMissingProject = errors.New("application.google_project_id is required")
	ErrMissingBucket  = errors.New("storage.raw_bucket is required")
	ErrMissingDataset = errors.New("big_query_data_source dataset and movies_table are required")
	ErrMissingAPIKey  = errors.New("tmdb.api_key is required")
	ErrInvalidStore   = errors.New("store.driver must be sqlite or postgres")
)

// ValidateCloud checks the settings needed to talk to Google Cloud.
func (c *Config) ValidateCloud() error {
	if c.Application.GoogleProjectId == "" {
		return ErrMissingProject
	}
	if c.Storage.RawBucket == "" {
		return ErrMissingBucket
	}
	if c.BigQueryDataSource.DatasetName == "" || c.BigQueryDataSource.MoviesTable == "" {
		return ErrMissingDataset
	}
	return nil
}

// ValidateFetch checks the settings needed to call the catalog API.
func (c *Config) ValidateFetch() error {
	if c.TMDB.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// ValidateStore checks the relational store settings.
func (c *Config) ValidateStore() error {
	switch c.Store.Driver {
	case "sqlite", "postgres":
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidStore, c.Store.Driver)
}
