package search

import (
	"net/http"
	"strconv"
	"time"

	"github.com/forumdb/forumdb/pkg/logger"
	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// RegisterRoutes mounts the search API, health and swagger endpoints.
func RegisterRoutes(r *gin.Engine, svc *Service) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "uptime": time.Since(startTime).String()})
	})

	r.GET("/api/posts/search", func(c *gin.Context) {
		q := c.Query("q")
		if q == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
			return
		}
		limit := int64(DefaultLimit)
		if v := c.Query("limit"); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n <= 0 || n > MaxLimit {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and " + strconv.Itoa(MaxLimit)})
				return
			}
			limit = n
		}
		keywords := Keywords(q)
		hits, err := svc.Search(c.Request.Context(), keywords, limit)
		if err != nil {
			logger.Errorf("search %q: %v", q, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"keywords": keywords, "count": len(hits), "results": hits})
	})

	RegisterSwagger(r)
}
