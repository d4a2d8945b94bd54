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

package tmdb_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/tmdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-key"

// catalogServer answers /movie/{id} from a fixed set of ids. Ids listed in
// failing answer 500.
func catalogServer(t *testing.T, known map[int]string, failing map[int]bool, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		if r.URL.Query().Get("api_key") != testKey {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/movie/"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if failing[id] {
			http.Error(w, `{"status_message":"internal error"}`, http.StatusInternalServerError)
			return
		}
		title, ok := known[id]
		if !ok {
			http.Error(w, `{"status_code":34}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      id,
			"title":   title,
			"budget":  1000000,
			"credits": map[string]any{"cast": []any{}, "crew": []any{}},
		})
	}))
}

func newClient(t *testing.T, baseURL string, concurrency int) *tmdb.Client {
	t.Helper()
	config := cloud.NewConfig().TMDB
	config.BaseURL = baseURL
	config.APIKey = testKey
	config.RequestsPerSecond = 0
	config.Concurrency = concurrency
	client, err := tmdb.NewClient(config)
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := tmdb.NewClient(cloud.NewConfig().TMDB)
	assert.ErrorIs(t, err, cloud.ErrMissingAPIKey)
}

func TestFetchMovie(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		assert.Equal(t, "/movie/299534", r.URL.Path)
		_, _ = fmt.Fprint(w, `{"id": 299534, "title": "Avengers: Endgame", "vote_average": 8.3}`)
	}))
	defer srv.Close()

	record, err := newClient(t, srv.URL, 1).FetchMovie(context.Background(), 299534)
	require.NoError(t, err)
	assert.Equal(t, "Avengers: Endgame", record["title"])
	assert.Equal(t, json.Number("299534"), record["id"])
	assert.Contains(t, query, "append_to_response=credits")
	assert.Contains(t, query, "language=en-US")
}

func TestFetchMovieNotFound(t *testing.T) {
	srv := catalogServer(t, map[int]string{}, nil, nil)
	defer srv.Close()

	_, err := newClient(t, srv.URL, 1).FetchMovie(context.Background(), 1)
	assert.ErrorIs(t, err, tmdb.ErrNotFound)
}

func TestFetchMovieStatusError(t *testing.T) {
	srv := catalogServer(t, map[int]string{}, map[int]bool{7: true}, nil)
	defer srv.Close()

	_, err := newClient(t, srv.URL, 1).FetchMovie(context.Background(), 7)
	var statusErr *tmdb.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, 7, statusErr.MovieID)
	assert.NotContains(t, err.Error(), testKey)
}

func TestFetchAllPreservesOrderAndSkipsMissing(t *testing.T) {
	known := map[int]string{1: "One", 2: "Two", 4: "Four", 5: "Five", 6: "Six"}
	var calls atomic.Int32
	srv := catalogServer(t, known, nil, &calls)
	defer srv.Close()

	ids := []int{6, 3, 1, 5, 2, 4}
	records, err := newClient(t, srv.URL, 3).FetchAll(context.Background(), ids)
	require.NoError(t, err)

	var titles []string
	for _, r := range records {
		titles = append(titles, r["title"].(string))
	}
	assert.Equal(t, []string{"Six", "One", "Five", "Two", "Four"}, titles)
	assert.Equal(t, int32(len(ids)), calls.Load())
}

func TestFetchAllStopsOnServerError(t *testing.T) {
	srv := catalogServer(t, map[int]string{1: "One"}, map[int]bool{2: true}, nil)
	defer srv.Close()

	_, err := newClient(t, srv.URL, 1).FetchAll(context.Background(), []int{1, 2, 3})
	var statusErr *tmdb.StatusError
	assert.ErrorAs(t, err, &statusErr)
}

func TestFetchAllEmpty(t *testing.T) {
	records, err := newClient(t, "http://127.0.0.1:0", 2).FetchAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetchRespectsRateLimit(t *testing.T) {
	srv := catalogServer(t, map[int]string{1: "One", 2: "Two", 3: "Three"}, nil, nil)
	defer srv.Close()

	config := cloud.NewConfig().TMDB
	config.BaseURL = srv.URL
	config.APIKey = testKey
	config.RequestsPerSecond = 20
	client, err := tmdb.NewClient(config)
	require.NoError(t, err)

	start := time.Now()
	_, err = client.FetchAll(context.Background(), []int{1, 2, 3})
	require.NoError(t, err)
	// burst of one: the 2nd and 3rd requests each wait ~50ms
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestFetchMovieCancelled(t *testing.T) {
	srv := catalogServer(t, map[int]string{1: "One"}, nil, nil)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newClient(t, srv.URL, 1).FetchMovie(ctx, 1)
	assert.Error(t, err)
}
