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

package telemetry_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestHandlerUsesCloudLoggingKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(telemetry.NewHandler(&buf, slog.LevelInfo))

	logger.Warn("stage dropped rows", "stage", "drop-duplicate-ids")

	entry := decode(t, &buf)
	assert.Equal(t, "WARNING", entry["severity"])
	assert.Equal(t, "stage dropped rows", entry["message"])
	assert.Contains(t, entry, "timestamp")
	assert.Equal(t, "drop-duplicate-ids", entry["stage"])
	assert.NotContains(t, entry, "logging.googleapis.com/trace")
}

func TestHandlerAddsSpanContext(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "clean")
	defer span.End()

	var buf bytes.Buffer
	logger := slog.New(telemetry.NewHandler(&buf, slog.LevelInfo)).With("batch", "b-1")
	logger.InfoContext(ctx, "cleaned batch")

	entry := decode(t, &buf)
	assert.Equal(t, span.SpanContext().TraceID().String(), entry["logging.googleapis.com/trace"])
	assert.Equal(t, span.SpanContext().SpanID().String(), entry["logging.googleapis.com/spanId"])
	assert.Equal(t, true, entry["logging.googleapis.com/trace_sampled"])
	assert.Equal(t, "b-1", entry["batch"])
}

func TestHandlerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(telemetry.NewHandler(&buf, slog.LevelInfo))
	logger.Debug("per stage detail")
	assert.Zero(t, buf.Len())
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := telemetry.ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := telemetry.ParseLevel("loud")
	assert.Error(t, err)
}

func TestSetupOpenTelemetryWithoutExporter(t *testing.T) {
	config := cloud.NewConfig()
	config.Telemetry.Exporter = telemetry.ExporterNone

	shutdown, err := telemetry.SetupOpenTelemetry(context.Background(), config)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "noop-export")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupOpenTelemetryUnknownExporter(t *testing.T) {
	config := cloud.NewConfig()
	config.Telemetry.Exporter = "zipkin"
	_, err := telemetry.SetupOpenTelemetry(context.Background(), config)
	assert.Error(t, err)
}
