package redis_test

import (
	"testing"

	"github.com/gocrud/inject/core"
	"github.com/gocrud/inject/di"
	"github.com/gocrud/inject/redis"

	goredis "github.com/redis/go-redis/v9"
)

func skipPing(o *redis.RedisClientOptions) {
	o.SkipPing = true
}

func TestNewRegistersNamedClients(t *testing.T) {
	rt := core.NewRuntime()

	opt := redis.New(
		redis.WithClient("default", skipPing),
		redis.WithClient("cache", skipPing, func(o *redis.RedisClientOptions) {
			o.DB = 1
		}),
	)
	if err := opt(rt); err != nil {
		t.Fatalf("redis.New failed: %v", err)
	}

	for _, name := range []string{"redis", "redis:default", "redis:cache", "redisFactory"} {
		if !rt.Registry.Has(name) {
			t.Errorf("expected %q to be registered", name)
		}
	}

	client, err := di.Resolve[*goredis.Client](rt.Registry, "redis:cache")
	if err != nil {
		t.Fatalf("Resolve(redis:cache) failed: %v", err)
	}
	if client.Options().DB != 1 {
		t.Errorf("expected cache client to use DB 1, got %d", client.Options().DB)
	}
}

func TestBuilderRejectsDuplicatesAndInvalid(t *testing.T) {
	builder := redis.NewBuilder()
	builder.AddClient("dup", skipPing)
	builder.AddClient("dup", skipPing)

	if _, err := builder.Build(nil); err == nil {
		t.Fatal("expected duplicate error")
	}

	builder = redis.NewBuilder()
	builder.AddClient("bad", func(o *redis.RedisClientOptions) {
		o.Addr = ""
	})
	if _, err := builder.Build(nil); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestEmptyBuilderIsNoop(t *testing.T) {
	rt := core.NewRuntime()
	if err := redis.New()(rt); err != nil {
		t.Fatalf("empty redis.New should be a no-op: %v", err)
	}
	if rt.Registry.Has("redisFactory") {
		t.Error("no factory should be registered without clients")
	}
}
