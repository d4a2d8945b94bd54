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

package cloud_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/cloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseTOML = `
[application]
name = "movie-analytics"
google_project_id = "base-project"
location = "us-central1"

[storage]
raw_bucket = "raw-bucket"
raw_prefix = "raw"

[big_query_data_source]
dataset = "movies"
movies_table = "clean_movies"

[tmdb]
movie_ids = [299534, 19995]
timeout = "3s"

[topic_subscriptions.raw_batches]
name = "raw-batches-sub"
dead_letter_topic = "raw-batches-dlq"
timeout_in_seconds = 60
`

const overlayTOML = `
[application]
google_project_id = "overlay-project"

[pipeline]
partitions = 4

[cache]
ttl = "1m"
`

func writeConfigDir(t *testing.T, runtime string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte(baseTOML), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env."+runtime+".toml"), []byte(overlayTOML), 0o600))
	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, runtime)
	return dir
}

func TestLoadConfigLayers(t *testing.T) {
	writeConfigDir(t, "unit")
	t.Setenv(cloud.EnvProjectID, "")
	t.Setenv(cloud.EnvTMDBAPIKey, "")

	config := cloud.NewConfig()
	require.NoError(t, cloud.LoadConfig(config))

	assert.Equal(t, "overlay-project", config.Application.GoogleProjectId)
	assert.Equal(t, "us-central1", config.Application.GoogleLocation)
	assert.Equal(t, "raw-bucket", config.Storage.RawBucket)
	assert.Equal(t, []int{299534, 19995}, config.TMDB.MovieIDs)
	assert.Equal(t, 3*time.Second, config.TMDB.Timeout.Duration)
	assert.Equal(t, 4, config.Pipeline.Partitions)
	assert.Equal(t, time.Minute, config.Cache.TTL.Duration)
	assert.Equal(t, "raw-batches-sub", config.TopicSubscriptions["raw_batches"].Name)

	// defaults survive when no file sets them
	assert.Equal(t, "https://api.themoviedb.org/3", config.TMDB.BaseURL)
	assert.Equal(t, "sqlite", config.Store.Driver)

	assert.NoError(t, config.ValidateCloud())
	assert.ErrorIs(t, config.ValidateFetch(), cloud.ErrMissingAPIKey)
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	writeConfigDir(t, "unit")
	t.Setenv(cloud.EnvProjectID, "env-project")
	t.Setenv(cloud.EnvTMDBAPIKey, "secret")
	t.Setenv(cloud.EnvRedisAddr, "localhost:6379")
	t.Setenv(cloud.EnvServerPort, "9090")

	config := cloud.NewConfig()
	require.NoError(t, cloud.LoadConfig(config))

	assert.Equal(t, "env-project", config.Application.GoogleProjectId)
	assert.Equal(t, "secret", config.TMDB.APIKey)
	assert.True(t, config.Cache.Enabled)
	assert.Equal(t, "localhost:6379", config.Cache.Addr)
	assert.Equal(t, "9090", config.Server.Port)
	assert.NoError(t, config.ValidateFetch())
}

func TestLoadConfigMissingFiles(t *testing.T) {
	t.Setenv(cloud.EnvConfigFilePrefix, t.TempDir())
	t.Setenv(cloud.EnvConfigRuntime, "nowhere")

	config := cloud.NewConfig()
	require.NoError(t, cloud.LoadConfig(config))
	assert.ErrorIs(t, config.ValidateCloud(), cloud.ErrMissingProject)
}

func TestLoadConfigInvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte("[tmdb]\ntimeout = \"soon\"\n"), 0o600))
	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, "unit")

	err := cloud.LoadConfig(cloud.NewConfig())
	assert.Error(t, err)
}

func TestValidateStore(t *testing.T) {
	config := cloud.NewConfig()
	assert.NoError(t, config.ValidateStore())

	config.Store.Driver = "postgres"
	assert.NoError(t, config.ValidateStore())

	config.Store.Driver = "mysql"
	assert.ErrorIs(t, config.ValidateStore(), cloud.ErrInvalidStore)
}
