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
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/services"
)

func (h *Handlers) ReportRouter(r *gin.RouterGroup) {
	reports := r.Group("/reports")
	{
		reports.GET("/rankings", func(c *gin.Context) {
			out, err := h.Reports.Rankings(c.Request.Context())
			if err != nil {
				abort(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		reports.GET("/rankings/:name", func(c *gin.Context) {
			out, err := h.Reports.Ranking(c.Request.Context(), c.Param("name"))
			if err != nil {
				abort(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		reports.GET("/franchises", func(c *gin.Context) {
			out, err := h.Reports.TopFranchises(c.Request.Context())
			if err != nil {
				abort(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		reports.GET("/franchise-comparison", func(c *gin.Context) {
			out, err := h.Reports.FranchiseComparison(c.Request.Context())
			if err != nil {
				abort(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		reports.GET("/directors", func(c *gin.Context) {
			minMovies := services.DefaultMinDirectorMovies
			if v := c.Query("min_movies"); v != "" {
				n, err := strconv.Atoi(v)
				if err != nil || n < 1 {
					badRequest(c, "min_movies must be a positive integer")
					return
				}
				minMovies = n
			}
			out, err := h.Reports.TopDirectors(c.Request.Context(), minMovies)
			if err != nil {
				abort(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})
	}
}
