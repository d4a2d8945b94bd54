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

// Package telemetry installs structured logging and OpenTelemetry tracing and
// metrics for the binaries.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/cloud"
	"go.opentelemetry.io/otel/trace"
)

// spanContextLogHandler adds the active span to every record so Cloud
// Logging can correlate log lines with traces.
type spanContextLogHandler struct {
	slog.Handler
}

func handlerWithSpanContext(handler slog.Handler) *spanContextLogHandler {
	return &spanContextLogHandler{Handler: handler}
}

func (t *spanContextLogHandler) Handle(ctx context.Context, record slog.Record) error {
	// See: https://cloud.google.com/logging/docs/structured-logging#special-payload-fields
	if s := trace.SpanContextFromContext(ctx); s.IsValid() {
		record.AddAttrs(
			slog.Any("logging.googleapis.com/trace", s.TraceID()),
			slog.Any("logging.googleapis.com/spanId", s.SpanID()),
			slog.Bool("logging.googleapis.com/trace_sampled", s.TraceFlags().IsSampled()),
		)
	}
	return t.Handler.Handle(ctx, record)
}

func (t *spanContextLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return handlerWithSpanContext(t.Handler.WithAttrs(attrs))
}

func (t *spanContextLogHandler) WithGroup(name string) slog.Handler {
	return handlerWithSpanContext(t.Handler.WithGroup(name))
}

func replacer(_ []string, a slog.Attr) slog.Attr {
	// Rename attribute keys to match Cloud Logging structured log format.
	switch a.Key {
	case slog.LevelKey:
		a.Key = "severity"
		// https://cloud.google.com/logging/docs/reference/v2/rest/v2/LogEntry#LogSeverity
		if level, ok := a.Value.Any().(slog.Level); ok && level == slog.LevelWarn {
			a.Value = slog.StringValue("WARNING")
		}
	case slog.TimeKey:
		a.Key = "timestamp"
	case slog.MessageKey:
		a.Key = "message"
	}
	return a
}

// ParseLevel maps debug, info, warn/warning and error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// NewHandler returns the JSON handler the binaries log through.
func NewHandler(w io.Writer, level slog.Level) slog.Handler {
	jsonHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, ReplaceAttr: replacer})
	return handlerWithSpanContext(jsonHandler)
}

// SetupLogging installs the default slog logger writing JSON to stdout at the
// configured level. Output of the standard log package goes through the same
// handler afterwards.
func SetupLogging(config *cloud.Config) {
	level, err := ParseLevel(config.Telemetry.LogLevel)
	slog.SetDefault(slog.New(NewHandler(os.Stdout, level)))
	if err != nil {
		slog.Warn("falling back to info logging", "error", err)
	}
}
