package middleware

import (
	"net/http"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisRateLimitMiddleware_Basic(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	clock := time.Unix(1_700_000_000, 0)
	now = func() time.Time { return clock }
	defer func() { now = time.Now }()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})

	r := gin.New()
	r.Use(RedisRateLimitMiddleware(client, 1, 0, 10*time.Second)) // 10 per 10s window
	r.GET("/r", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusOK, get(r, "/r", ""))
	}
	require.Equal(t, http.StatusTooManyRequests, get(r, "/r", ""))
	require.Len(t, m.Keys(), 1)
	require.True(t, m.TTL(m.Keys()[0]) > 0)

	// a second instance sharing the Redis sees the same window
	r2 := gin.New()
	r2.Use(RedisRateLimitMiddleware(client, 1, 0, 10*time.Second))
	r2.GET("/r", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
	require.Equal(t, http.StatusTooManyRequests, get(r2, "/r", ""))

	// next window starts fresh
	clock = clock.Add(10 * time.Second)
	require.Equal(t, http.StatusOK, get(r, "/r", ""))
}

func TestRedisRateLimitMiddleware_NilClientFallsBack(t *testing.T) {
	r := gin.New()
	r.Use(RedisRateLimitMiddleware(nil, 0.5, 1, time.Second))
	r.GET("/r", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, get(r, "/r", ""))
	require.Equal(t, http.StatusTooManyRequests, get(r, "/r", ""))
}
