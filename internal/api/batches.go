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
	"strings"

	"github.com/gin-gonic/gin"
)

// BatchRouter hands out signed download links for archived raw batches.
func (h *Handlers) BatchRouter(r *gin.RouterGroup) {
	r.GET("/batches/:name", func(c *gin.Context) {
		if h.Archive == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "raw batch archive is not configured"})
			return
		}
		name := c.Param("name")
		if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
			badRequest(c, "invalid batch name")
			return
		}
		ttl := h.SignedURLTTL
		if ttl <= 0 {
			ttl = DefaultSignedURLTTL
		}
		object := h.Archive.ObjectName(name)
		u, err := h.Archive.SignedURL(c.Request.Context(), object, ttl)
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"object": object, "url": u, "expires_in": ttl.String()})
	})
}
