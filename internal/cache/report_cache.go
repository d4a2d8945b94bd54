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

// Package cache memoizes computed report tables in redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the report cache.
const DefaultPrefix = "movie-analytics:report"

// ComputeFunc produces a report table on a cache miss.
type ComputeFunc func(ctx context.Context) (*model.Table, error)

// ReportCache stores report tables as JSON with a TTL. A nil *ReportCache is
// valid and always computes.
type ReportCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New connects to redis and verifies the connection.
func New(ctx context.Context, config cloud.Cache) (*ReportCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		DB:           config.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", config.Addr, err)
	}
	slog.InfoContext(ctx, "redis connected", "addr", config.Addr, "db", config.DB)
	return NewWithClient(client, DefaultPrefix, config.TTL.Duration), nil
}

func NewWithClient(client *redis.Client, prefix string, ttl time.Duration) *ReportCache {
	return &ReportCache{client: client, prefix: strings.TrimSuffix(prefix, ":"), ttl: ttl}
}

// Key joins parts below the cache prefix. Parts are lower-cased so query
// parameters that differ only in case share an entry.
func (c *ReportCache) Key(parts ...string) string {
	prefix := DefaultPrefix
	if c != nil {
		prefix = c.prefix
	}
	return prefix + ":" + strings.ToLower(strings.Join(parts, ":"))
}

// GetOrCompute returns the cached table for key or computes and stores it.
// Redis failures are logged and the table is computed anyway.
func (c *ReportCache) GetOrCompute(ctx context.Context, key string, fn ComputeFunc) (*model.Table, error) {
	if c == nil {
		return fn(ctx)
	}

	cached, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var t model.Table
		if err := json.Unmarshal(cached, &t); err == nil {
			slog.DebugContext(ctx, "report cache hit", "key", key)
			return &t, nil
		}
		slog.WarnContext(ctx, "discarding unreadable cache entry", "key", key, "error", err)
	case errors.Is(err, redis.Nil):
		slog.DebugContext(ctx, "report cache miss", "key", key)
	default:
		slog.WarnContext(ctx, "report cache unavailable", "key", key, "error", err)
	}

	t, err := fn(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "failed to cache report", "key", key, "error", err)
	}
	return t, nil
}

// Invalidate drops every cached report. It runs after new movies are
// persisted.
func (c *ReportCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	var keys []string
	iter := c.client.Scan(ctx, 0, c.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan report cache: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	deleted, err := c.client.Del(ctx, keys...).Result()
	if err != nil {
		return fmt.Errorf("failed to invalidate %d cached reports: %w", len(keys), err)
	}
	slog.InfoContext(ctx, "report cache invalidated", "deleted", deleted)
	return nil
}

func (c *ReportCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
