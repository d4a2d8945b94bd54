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

package cloud

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	ConfigFileBaseName  = ".env"
	ConfigFileExtension = ".toml"
	ConfigSeparator     = "."
	EnvConfigFilePrefix = "GCP_CONFIG_PREFIX" // directory holding the TOML files
	EnvConfigRuntime    = "GCP_RUNTIME"       // overlay name, e.g. "local", "test", "prod"

	EnvProjectID   = "GCP_PROJECT_ID"
	EnvTMDBAPIKey  = "TMDB_API_KEY"
	EnvStoreDSN    = "STORE_DSN"
	EnvRedisAddr   = "REDIS_ADDR"
	EnvServerPort  = "PORT"
	DotEnvFileName = ".env"
)

func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// LoadConfig fills config in three layers:
//  1. <prefix>/.env.toml
//  2. <prefix>/.env.<runtime>.toml
//  3. environment variables, after loading a .env file from the working
//     directory if one exists.
//
// Missing files are skipped. A file that fails to decode is an error.
func LoadConfig(config *Config) error {
	prefix := os.Getenv(EnvConfigFilePrefix)
	runtime := os.Getenv(EnvConfigRuntime)
	if runtime == "" {
		runtime = "test"
	}

	base := filepath.Join(prefix, ConfigFileBaseName+ConfigFileExtension)
	overlay := filepath.Join(prefix, strings.Join([]string{ConfigFileBaseName, runtime}, ConfigSeparator)+ConfigFileExtension)

	for _, name := range []string{base, overlay} {
		if !fileExists(name) {
			slog.Debug("configuration file not found, skipping", "file", name)
			continue
		}
		if _, err := toml.DecodeFile(name, config); err != nil {
			return fmt.Errorf("failed to decode configuration file %s: %w", name, err)
		}
		slog.Debug("loaded configuration file", "file", name)
	}

	if err := godotenv.Load(DotEnvFileName); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", DotEnvFileName, err)
	}
	applyEnvOverrides(config)
	return nil
}

// applyEnvOverrides lets deployment secrets live outside the TOML files.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv(EnvProjectID); v != "" {
		config.Application.GoogleProjectId = v
	}
	if v := os.Getenv(EnvTMDBAPIKey); v != "" {
		config.TMDB.APIKey = v
	}
	if v := os.Getenv(EnvStoreDSN); v != "" {
		config.Store.DSN = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		config.Cache.Addr = v
		config.Cache.Enabled = true
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		config.Server.Port = v
	}
}
