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

// Package api serves the movie catalog, its reports and the cleaning
// pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/services"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/workflow"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// DefaultSignedURLTTL is how long batch download links stay valid.
const DefaultSignedURLTTL = 15 * time.Minute

// BatchSigner issues download links for archived raw batches.
type BatchSigner interface {
	ObjectName(batchID string) string
	SignedURL(ctx context.Context, name string, expires time.Duration) (string, error)
}

// Handlers holds what the routes need. Archive may be nil when the server
// runs without Google Cloud.
type Handlers struct {
	Reports        *services.ReportService
	Cleaner        *workflow.CleaningWorkflow
	Archive        BatchSigner
	MaxUploadBytes int64
	SignedURLTTL   time.Duration
}

// NewRouter builds the gin engine with tracing, CORS and every route below
// /api/v1.
func NewRouter(config *cloud.Config, h *Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(config.Application.Name))
	r.Use(corsMiddleware(config.Server.AllowedOrigins))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiV1 := r.Group("/api/v1")
	{
		h.MovieRouter(apiV1)
		h.ReportRouter(apiV1)
		h.CleanRouter(apiV1)
		h.BatchRouter(apiV1)
		h.Dashboard(apiV1)
	}
	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return cors.Default()
	}
	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Encoding"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	})
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	var notFound *model.ColumnNotFoundError
	switch {
	case errors.As(err, &notFound):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnknownRanking), errors.Is(err, model.ErrMovieNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrMissingRequiredColumn):
		return http.StatusUnprocessableEntity
	case errors.Is(err, cloud.ErrNotRawBatch):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// abort writes err as a JSON error body. Internal errors are logged and
// their details kept out of the response.
func abort(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.AbortWithStatusJSON(status, gin.H{"error": http.StatusText(status)})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
