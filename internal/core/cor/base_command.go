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
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// MeterName is the instrumentation scope of every command metric.
const MeterName = "github.com/jaycherian/gcp-go-movie-analytics"

// BaseCommand carries the name, piping keys and telemetry instruments shared
// by all commands. Concrete commands embed it and implement Execute.
type BaseCommand struct {
	Name              string
	InputParamName    string
	OutputParamName   string
	Tracer            trace.Tracer
	Meter             metric.Meter
	SuccessCounter    metric.Int64Counter
	ErrorCounter      metric.Int64Counter
	DurationHistogram metric.Float64Histogram
}

// NewBaseCommand creates a command named name with its counters
// "<name>.counter.success", "<name>.counter.error" and the histogram
// "<name>.duration" (milliseconds).
func NewBaseCommand(name string) *BaseCommand {
	meter := otel.Meter(MeterName)

	successCounter, err := meter.Int64Counter(fmt.Sprintf("%s.counter.success", name))
	if err != nil {
		slog.Error("failed to create success counter", "command", name, "error", err)
	}
	errorCounter, err := meter.Int64Counter(fmt.Sprintf("%s.counter.error", name))
	if err != nil {
		slog.Error("failed to create error counter", "command", name, "error", err)
	}
	duration, err := meter.Float64Histogram(fmt.Sprintf("%s.duration", name), metric.WithUnit("ms"))
	if err != nil {
		slog.Error("failed to create duration histogram", "command", name, "error", err)
	}

	return &BaseCommand{
		Name:              name,
		Tracer:            otel.Tracer(name),
		Meter:             meter,
		SuccessCounter:    successCounter,
		ErrorCounter:      errorCounter,
		DurationHistogram: duration,
	}
}

// WithParams overrides the input and output keys. Empty strings keep the
// piping defaults.
func (c *BaseCommand) WithParams(input, output string) *BaseCommand {
	c.InputParamName = input
	c.OutputParamName = output
	return c
}

func (c *BaseCommand) GetName() string {
	return c.Name
}

// IsExecutable requires a Go context and a non-nil input value.
func (c *BaseCommand) IsExecutable(context Context) bool {
	return context != nil && context.GetContext() != nil && context.Get(c.GetInputParam()) != nil
}

// GetInputParam defaults to CtxIn so commands pipe inside a BaseChain.
func (c *BaseCommand) GetInputParam() string {
	if len(c.InputParamName) == 0 {
		return CtxIn
	}
	return c.InputParamName
}

// GetOutputParam defaults to CtxOut.
func (c *BaseCommand) GetOutputParam() string {
	if len(c.OutputParamName) == 0 {
		return CtxOut
	}
	return c.OutputParamName
}

func (c *BaseCommand) GetTracer() trace.Tracer {
	return c.Tracer
}

func (c *BaseCommand) GetMeter() metric.Meter {
	return c.Meter
}

func (c *BaseCommand) GetSuccessCounter() metric.Int64Counter {
	return c.SuccessCounter
}

func (c *BaseCommand) GetErrorCounter() metric.Int64Counter {
	return c.ErrorCounter
}

func (c *BaseCommand) GetDurationHistogram() metric.Float64Histogram {
	return c.DurationHistogram
}

// Fail records err against the command and bumps its error counter.
func (c *BaseCommand) Fail(context Context, err error) {
	c.GetErrorCounter().Add(context.GetContext(), 1)
	context.AddError(c.GetName(), err)
}
