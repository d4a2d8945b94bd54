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
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/services"
)

// MovieRouter serves catalog search and single movie lookups.
func (h *Handlers) MovieRouter(r *gin.RouterGroup) {
	movies := r.Group("/movies")
	{
		movies.GET("", h.searchMovies)
		movies.GET("/:id", h.getMovie)
	}
}

// searchMovies accepts title, cast, genre (repeatable or comma separated),
// director, sort, order (asc or desc), limit and columns.
func (h *Handlers) searchMovies(c *gin.Context) {
	search := services.MovieSearch{
		Title:    c.Query("title"),
		Cast:     c.Query("cast"),
		Director: c.Query("director"),
		SortBy:   c.Query("sort"),
		Genres:   splitList(c.QueryArray("genre")),
		Columns:  splitList(c.QueryArray("columns")),
	}
	switch strings.ToLower(c.DefaultQuery("order", "desc")) {
	case "asc":
		search.Ascending = true
	case "desc":
	default:
		badRequest(c, "order must be asc or desc")
		return
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(c, "limit must be a non-negative integer")
			return
		}
		search.Limit = n
	}

	out, err := h.Reports.Search(c.Request.Context(), search)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) getMovie(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "id must be an integer")
		return
	}
	out, err := h.Reports.Movie(c.Request.Context(), id)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
