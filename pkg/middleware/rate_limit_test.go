package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/forumdb/forumdb/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func get(r *gin.Engine, path, remote string) int {
	req := httptest.NewRequest("GET", path, nil)
	if remote != "" {
		req.RemoteAddr = remote
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitMiddleware_AllowsUnderLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(10, 2))
	r.GET("/ok", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	before := testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory"))
	require.Equal(t, http.StatusOK, get(r, "/ok", ""))
	require.Equal(t, http.StatusOK, get(r, "/ok", ""))
	require.Equal(t, 2.0, testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory"))-before)
}

func TestRateLimitMiddleware_BlocksWhenExceeded(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(2, 1))
	r.GET("/limited", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, get(r, "/limited", ""))
	require.Equal(t, http.StatusTooManyRequests, get(r, "/limited", ""))

	// one token is back after half a second
	time.Sleep(600 * time.Millisecond)
	require.Equal(t, http.StatusOK, get(r, "/limited", ""))
}

func TestRateLimitMiddleware_SeparateBucketsPerClient(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(0.5, 1))
	r.GET("/u", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, get(r, "/u", "10.0.0.1:1234"))
	require.Equal(t, http.StatusTooManyRequests, get(r, "/u", "10.0.0.1:1234"))
	require.Equal(t, http.StatusOK, get(r, "/u", "10.0.0.2:1234"))
}

func TestRateLimitByKey(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitByKey(0.5, 1, func(c *gin.Context) string { return "global" }))
	r.GET("/k", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, get(r, "/k", "10.0.0.1:1234"))
	require.Equal(t, http.StatusTooManyRequests, get(r, "/k", "10.0.0.2:1234"))
}
