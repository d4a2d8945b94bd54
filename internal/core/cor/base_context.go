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

package cor

import (
	"context"
	"io"
	"log/slog"
)

// BaseContext is the default Context. It is not safe for concurrent use; a
// chain runs its commands one after the other.
type BaseContext struct {
	data    map[string]interface{}
	errors  map[string]error
	stats   []Stat
	closers []io.Closer
	context context.Context
}

// NewBaseContext returns an empty context bound to context.Background.
func NewBaseContext() Context {
	return &BaseContext{
		data:    make(map[string]interface{}),
		errors:  make(map[string]error),
		context: context.Background(),
	}
}

func (c *BaseContext) SetContext(context context.Context) {
	c.context = context
}

func (c *BaseContext) GetContext() context.Context {
	return c.context
}

func (c *BaseContext) Add(key string, value interface{}) Context {
	c.data[key] = value
	return c
}

func (c *BaseContext) Get(key string) interface{} {
	return c.data[key]
}

func (c *BaseContext) Remove(key string) {
	delete(c.data, key)
}

func (c *BaseContext) AddError(key string, err error) {
	c.errors[key] = err
}

func (c *BaseContext) GetErrors() map[string]error {
	return c.errors
}

func (c *BaseContext) HasErrors() bool {
	return len(c.errors) > 0
}

func (c *BaseContext) AddStat(stat Stat) {
	c.stats = append(c.stats, stat)
}

func (c *BaseContext) GetStats() []Stat {
	return c.stats
}

func (c *BaseContext) AddCloser(closer io.Closer) {
	c.closers = append(c.closers, closer)
}

// Close releases registered resources last-in first-out. Failures are logged.
func (c *BaseContext) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			slog.Warn("failed to release workflow resource", "error", err)
		}
	}
	c.closers = nil
}
