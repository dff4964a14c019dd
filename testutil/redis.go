package testutil

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
)

// RedisURLEnv names the variable holding the integration test Redis URL.
const RedisURLEnv = "TEST_REDIS_URL"

// NewRedis returns a client for the test Redis server, closed when the test
// ends.
func NewRedis(t *testing.T) *redis.Client {
	t.Helper()

	opts, err := redis.ParseURL(requireEnv(t, RedisURLEnv))
	if err != nil {
		t.Fatalf("testutil.NewRedis: parse url: %v", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		t.Fatalf("testutil.NewRedis: ping: %v", err)
	}

	t.Cleanup(func() { rdb.Close() })
	return rdb
}
