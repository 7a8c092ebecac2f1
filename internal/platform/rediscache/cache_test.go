package rediscache

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/winnie-backend/internal/platform/logger"
)

func testCache(t *testing.T) Cache {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set; skipping redis-backed tests")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	c := NewWithClient(logger.Nop(), rdb, "winnie-test")
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCacheRoundTrip(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()
	key := "research:" + t.Name()
	t.Cleanup(func() { _ = c.Delete(ctx, key) })

	if _, ok, err := c.Get(ctx, key); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v err %v", ok, err)
	}
	if err := c.Set(ctx, key, "context", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := c.Get(ctx, key)
	if err != nil || !ok || got != "context" {
		t.Fatalf("Get = %q %v %v", got, ok, err)
	}
}

func TestNewRequiresAddr(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	if _, _, err := New(logger.Nop()); err == nil {
		t.Fatal("expected missing REDIS_ADDR error")
	}
}

func TestKeyPrefix(t *testing.T) {
	c := &cache{prefix: "winnie"}
	if got := c.key("research:abc"); got != "winnie:research:abc" {
		t.Fatalf("key = %s", got)
	}
	c.prefix = ""
	if got := c.key("x"); got != "x" {
		t.Fatalf("key = %s", got)
	}
}
