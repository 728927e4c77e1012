package config

// Redis backs the distributed rate limiter and the response
// cache.  If the server cannot be reached at startup the client
// is nil and both features silently turn themselves off; the API
// keeps working without Redis.

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client from REDIS_ADDR (or
// REDIS_HOST/REDIS_PORT), REDIS_PASSWORD and REDIS_DB.  It
// returns nil when no connection can be established.
func NewRedisClient() *redis.Client {
	addr := getenv("REDIS_ADDR", "")
	if host := getenv("REDIS_HOST", ""); host != "" {
		addr = host + ":" + getenv("REDIS_PORT", "6379")
	}
	if addr == "" {
		addr = "localhost:6379"
	}
	dbNum := 0
	if s := getenv("REDIS_DB", ""); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			dbNum = n
		}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: getenv("REDIS_PASSWORD", ""),
		DB:       dbNum,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}
