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

// Package test provides fixtures and helpers shared by the test suites:
// raw movie records, a sample catalog, storage notifications and a cached
// test configuration.
package test

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/cloud"
)

// StateManager caches the test configuration so it is loaded once per test
// binary.
type StateManager struct {
	config *cloud.Config
}

var state = &StateManager{}

// HandleErr fails the test when err is not nil.
func HandleErr(err error, t *testing.T) {
	t.Helper()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// EnvIntegration enables tests that talk to real Google Cloud services.
const EnvIntegration = "MOVIE_INTEGRATION_TESTS"

// RequireCloud skips a test unless integration tests have been enabled.
func RequireCloud(t *testing.T) {
	t.Helper()
	if os.Getenv(EnvIntegration) == "" {
		t.Skipf("%s not set, skipping test that needs Google Cloud", EnvIntegration)
	}
}

// GetTestRawBatchMessageText returns a storage object-finalize notification
// for an archived raw batch.
func GetTestRawBatchMessageText(bucket, name string) string {
	return fmt.Sprintf(`{
  "kind": "storage#object",
  "id": "%[1]s/%[2]s/1728615848664286",
  "selfLink": "https://www.googleapis.com/storage/v1/b/%[1]s/o/%[2]s",
  "name": "%[2]s",
  "bucket": "%[1]s",
  "generation": "1728615848664286",
  "metageneration": "1",
  "contentType": "application/json",
  "timeCreated": "2024-10-11T03:04:08.672Z",
  "updated": "2024-10-11T03:04:08.672Z",
  "storageClass": "STANDARD",
  "size": "48213",
  "md5Hash": "67c1rAU+1RYZzK5zp8iBkA==",
  "crc32c": "IYeSTw==",
  "etag": "CN658+yrhYkDEAE="
}`, bucket, name)
}

// ConfigDir locates the repository's configs directory by walking up from the
// working directory of the test binary.
func ConfigDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, "configs")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("configs directory not found above %s", dir)
		}
		dir = parent
	}
}

// SetupOS points the configuration loader at the test configuration.
func SetupOS() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.Setenv(cloud.EnvConfigFilePrefix, dir); err != nil {
		return err
	}
	if os.Getenv(cloud.EnvConfigRuntime) == "" {
		return os.Setenv(cloud.EnvConfigRuntime, "test")
	}
	return nil
}

// GetConfig loads the test configuration once and returns the cached copy.
func GetConfig() *cloud.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		if err := cloud.LoadConfig(config); err != nil {
			log.Fatalf("failed to load test config: %v\n", err)
		}
		state.config = config
	}
	return state.config
}
