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

// Package tmdb fetches raw movie records, credits included, from The Movie
// Database API.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

// ErrNotFound is returned by FetchMovie when the catalog has no such id.
var ErrNotFound = errors.New("movie not found")

// StatusError is any other non-200 answer.
type StatusError struct {
	MovieID    int
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb returned status %d for movie %d: %s", e.StatusCode, e.MovieID, e.Body)
}

// Client is a rate-limited catalog client. It is safe for concurrent use.
type Client struct {
	baseURL     string
	apiKey      string
	language    string
	concurrency int
	limiter     *rate.Limiter
	httpClient  *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the instrumented default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient builds a client from the tmdb configuration section.
func NewClient(config cloud.TMDB, opts ...Option) (*Client, error) {
	if config.APIKey == "" {
		return nil, cloud.ErrMissingAPIKey
	}
	if _, err := url.Parse(config.BaseURL); err != nil || config.BaseURL == "" {
		return nil, fmt.Errorf("invalid tmdb.base_url %q", config.BaseURL)
	}
	limit := rate.Inf
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
	}
	timeout := config.Timeout.Duration
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL:     strings.TrimSuffix(config.BaseURL, "/"),
		apiKey:      config.APIKey,
		language:    config.Language,
		concurrency: max(config.Concurrency, 1),
		limiter:     rate.NewLimiter(limit, 1),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) movieURL(id int) string {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	if c.language != "" {
		q.Set("language", c.language)
	}
	q.Set("append_to_response", "credits")
	return c.baseURL + "/movie/" + strconv.Itoa(id) + "?" + q.Encode()
}

// FetchMovie returns one movie with its credits. It waits for the rate
// limiter before sending the request.
func (c *Client) FetchMovie(ctx context.Context, id int) (model.RawRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.movieURL(id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for movie %d: %w", id, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error carries the full URL, api key included.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("request for movie %d failed: %w", id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("movie %d: %w", id, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{MovieID: id, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var record model.RawRecord
	if err := dec.Decode(&record); err != nil {
		return nil, fmt.Errorf("failed to decode movie %d: %w", id, err)
	}
	return record, nil
}

// FetchAll fetches ids with up to the configured concurrency and returns the
// records in id order. Ids the catalog does not know are skipped; any other
// failure cancels the remaining requests and is returned.
func (c *Client) FetchAll(ctx context.Context, ids []int) ([]model.RawRecord, error) {
	results := make([]model.RawRecord, len(ids))
	p := pool.New().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(c.concurrency)
	for i, id := range ids {
		i, id := i, id
		p.Go(func(ctx context.Context) error {
			record, err := c.FetchMovie(ctx, id)
			if errors.Is(err, ErrNotFound) {
				slog.WarnContext(ctx, "movie not found, skipping", "movie_id", id)
				return nil
			}
			if err != nil {
				return err
			}
			results[i] = record
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	records := make([]model.RawRecord, 0, len(ids))
	for _, r := range results {
		if r != nil {
			records = append(records, r)
		}
	}
	slog.InfoContext(ctx, "fetched movies", "requested", len(ids), "fetched", len(records))
	return records, nil
}
