// internal/ratelimiter/redis_test.go
package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis, *time.Time) {
	t.Helper()

	server, err := miniredis.Run()
	assert.Nil(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewRedisStore(client, WithRedisClock(func() time.Time { return now }))
	return store, server, &now
}

func TestRedisStore_GetAbsent(t *testing.T) {
	store, _, _ := newTestRedisStore(t)

	ent, err := store.Get(context.Background(), "ratelimit:1.2.3.4")
	assert.Nil(t, err)
	assert.Nil(t, ent)
}

func TestRedisStore_SetThenGet(t *testing.T) {
	store, _, now := newTestRedisStore(t)
	ctx := context.Background()

	ent, err := store.Set(ctx, "ratelimit:1.2.3.4", 1, time.Minute)
	assert.Nil(t, err)
	assert.Equal(t, 1, ent.Count)
	assert.Equal(t, now.Add(time.Minute), ent.ResetAt)

	got, err := store.Get(ctx, "ratelimit:1.2.3.4")
	assert.Nil(t, err)
	assert.Equal(t, 1, got.Count)
	assert.Equal(t, now.Add(time.Minute), got.ResetAt)
}

func TestRedisStore_IncrementCountsWithinWindow(t *testing.T) {
	store, _, _ := newTestRedisStore(t)
	ctx := context.Background()

	_, err := store.Set(ctx, "k", 1, time.Minute)
	assert.Nil(t, err)

	for want := 2; want <= 5; want++ {
		ent, err := store.Increment(ctx, "k")
		assert.Nil(t, err)
		assert.Equal(t, want, ent.Count)
	}
}

func TestRedisStore_IncrementAbsentIsNoOp(t *testing.T) {
	store, server, _ := newTestRedisStore(t)

	ent, err := store.Increment(context.Background(), "k")
	assert.Nil(t, err)
	assert.Nil(t, ent)

	// El INCR de apoyo no debe dejar basura en Redis.
	assert.False(t, server.Exists("k"))
}

func TestRedisStore_WindowExpires(t *testing.T) {
	store, server, now := newTestRedisStore(t)
	ctx := context.Background()

	_, err := store.Set(ctx, "k", 1, time.Minute)
	assert.Nil(t, err)

	server.FastForward(61 * time.Second)
	*now = now.Add(61 * time.Second)

	ent, err := store.Get(ctx, "k")
	assert.Nil(t, err)
	assert.Nil(t, ent)
}

func TestRedisStore_SetRaceFallsBackToIncrement(t *testing.T) {
	store, _, _ := newTestRedisStore(t)
	ctx := context.Background()

	// Otro proceso ya arrancó la ventana: el SetNX no gana y el contador
	// se acumula sobre la ventana existente.
	_, err := store.Set(ctx, "k", 1, time.Minute)
	assert.Nil(t, err)

	ent, err := store.Set(ctx, "k", 1, time.Minute)
	assert.Nil(t, err)
	assert.Equal(t, 2, ent.Count)
}
