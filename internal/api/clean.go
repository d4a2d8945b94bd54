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

package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/cor"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
)

// CleanResponse is the result of cleaning an uploaded batch.
type CleanResponse struct {
	RowsIn  int          `json:"rows_in"`
	RowsOut int          `json:"rows_out"`
	Stats   []cor.Stat   `json:"stats"`
	Table   *model.Table `json:"table"`
}

// CleanRouter cleans a raw batch posted as a JSON array, plain or gzip
// compressed. Nothing is persisted.
func (h *Handlers) CleanRouter(r *gin.RouterGroup) {
	r.POST("/clean", func(c *gin.Context) {
		body := c.Request.Body
		if h.MaxUploadBytes > 0 {
			body = http.MaxBytesReader(c.Writer, body, h.MaxUploadBytes)
		}
		records, err := cloud.DecodeRawBatch(body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			switch {
			case errors.As(err, &tooLarge):
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
			case errors.Is(err, cloud.ErrNotRawBatch):
				abort(c, err)
			default:
				badRequest(c, err.Error())
			}
			return
		}

		table, stats, err := h.Cleaner.Clean(c.Request.Context(), records)
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(http.StatusOK, CleanResponse{
			RowsIn:  len(records),
			RowsOut: table.Len(),
			Stats:   stats,
			Table:   table,
		})
	})
}
