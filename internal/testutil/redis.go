package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// SetupTestRedis returns a client on the given logical database of the
// test Redis, flushed before and after the test. Packages use distinct
// databases so parallel test binaries do not share catalog keys. The
// test is skipped when LEARNHUB_TEST_REDIS_ADDR is unset or unreachable.
func SetupTestRedis(t *testing.T, db int) *redis.Client {
	t.Helper()

	addr := os.Getenv("LEARNHUB_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LEARNHUB_TEST_REDIS_ADDR not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		t.Skipf("redis not reachable at %s: %v", addr, err)
	}
	if err := rdb.FlushDB(ctx).Err(); err != nil {
		_ = rdb.Close()
		t.Fatalf("flush redis db %d: %v", db, err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = rdb.FlushDB(ctx).Err()
		_ = rdb.Close()
	})
	return rdb
}
