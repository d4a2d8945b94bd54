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

// Package cor (Chain of Responsibility) is the small runtime the ingestion and
// cleaning workflows are built on. A workflow is a Chain of Commands sharing a
// Context: each command reads its input from the context, writes its output
// back, and the chain pipes one command's output into the next one's input.
//
// This file defines the interfaces. BaseContext, BaseCommand and BaseChain are
// the implementations concrete workflows embed or instantiate; see the
// commands package for the commands themselves and the workflow package for
// how they are assembled.
package cor

import (
	"context"
	"io"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the piping keys. A BaseChain moves the value a command
// stores under CtxOut to CtxIn before running the next command.
const (
	CtxIn  = "__IN__"
	CtxOut = "__OUT__"
)

// Stat is a row-count observation recorded by a command, typically one per
// cleaning stage.
type Stat struct {
	Command  string        `json:"command"`
	RowsIn   int           `json:"rows_in"`
	RowsOut  int           `json:"rows_out"`
	Columns  int           `json:"columns"`
	Duration time.Duration `json:"duration"`
}

// Context is the property bag shared by the commands of one workflow run.
type Context interface {
	// SetContext replaces the Go context carried by this run (cancellation and
	// trace propagation).
	SetContext(context context.Context)

	// GetContext returns the Go context of the command currently executing.
	// Commands pass it to every blocking call so spans nest under the
	// command's own span.
	GetContext() context.Context

	// Add stores a value under key and returns the context for chaining.
	Add(key string, value interface{}) Context

	// Get returns the value stored under key, or nil. Callers type-assert the
	// result and record an error when the assertion fails.
	Get(key string) interface{}

	// Remove deletes key. Removing a missing key is a no-op.
	Remove(key string)

	// AddError records an error, keyed by the name of the command that raised
	// it.
	AddError(key string, err error)

	// GetErrors returns the recorded errors keyed by command name.
	GetErrors() map[string]error

	// HasErrors reports whether any command has failed. A BaseChain checks it
	// before each command.
	HasErrors() bool

	// AddStat appends a row-count observation.
	AddStat(stat Stat)

	// GetStats returns the observations in the order they were recorded.
	GetStats() []Stat

	// AddCloser registers a resource released by Close, in reverse order.
	AddCloser(closer io.Closer)

	// Close releases every registered resource.
	Close()
}

// Executable is anything with an Execute step.
type Executable interface {
	Execute(context Context)
}

// Command is one unit of work in a chain.
type Command interface {
	Executable

	// GetName identifies the command in logs, spans, metric names and the
	// error map.
	GetName() string

	// GetInputParam is the context key the command reads its input from.
	GetInputParam() string

	// GetOutputParam is the context key the command writes its result to.
	GetOutputParam() string

	// IsExecutable is checked by the chain before Execute.
	IsExecutable(context Context) bool

	// The telemetry instruments created by NewBaseCommand. The counters and
	// the histogram may be nil if the meter provider rejected them.
	GetTracer() trace.Tracer
	GetMeter() metric.Meter
	GetSuccessCounter() metric.Int64Counter
	GetErrorCounter() metric.Int64Counter
	GetDurationHistogram() metric.Float64Histogram
}

// Chain is a Command made of other commands.
type Chain interface {
	Command

	// ContinueOnFailure keeps the chain going after a command records an
	// error. The default is to stop.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command. Commands run in the order they are added.
	AddCommand(command Command) Chain
}
