package idalloc

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// observeScript raises KEYS[1] to ARGV[1] when it is lower, atomically.
var observeScript = redis.NewScript(`
local cur = tonumber(redis.call('GET', KEYS[1]) or '0')
local floor = tonumber(ARGV[1])
if cur < floor then
	redis.call('SET', KEYS[1], ARGV[1])
	return floor
end
return cur
`)

// Redis is an Allocator shared by every session pointed at the same Redis.
// Counters live under prefix+collection and advance with INCR.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a Redis-backed allocator. Prefix may be empty.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "forumdb:maxid:"
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(collection string) string {
	return r.prefix + collection
}

func (r *Redis) Next(ctx context.Context, collection string) (string, error) {
	n, err := r.client.Incr(ctx, r.key(collection)).Result()
	if err != nil {
		return "", fmt.Errorf("next %s id: %w", collection, err)
	}
	return strconv.FormatInt(n, 10), nil
}

func (r *Redis) Observe(ctx context.Context, collection string, max int64) error {
	if err := observeScript.Run(ctx, r.client, []string{r.key(collection)}, max).Err(); err != nil {
		return fmt.Errorf("observe %s id: %w", collection, err)
	}
	return nil
}
