// internal/ratelimiter/redis.go
package ratelimiter

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore implementa Store sobre Redis, para cuando la API corre en más
// de un proceso y el mapa en memoria se queda corto. Redis se encarga de la
// expiración con el TTL de cada clave; el ResetAt lo derivamos del PTTL.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

type RedisOption func(*RedisStore)

// WithRedisClock inyecta el reloj. Lo usamos en los tests.
func WithRedisClock(now func() time.Time) RedisOption {
	return func(s *RedisStore) { s.now = now }
}

func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	p := s.client.Pipeline()
	getRes := p.Get(ctx, key)
	ttlRes := p.PTTL(ctx, key)

	if _, err := p.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	count, err := getRes.Int()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	ttl, err := ttlRes.Result()
	if err != nil {
		return nil, err
	}
	if ttl < 0 {
		// Clave sin expiración: no es una ventana nuestra. La tratamos
		// como ausente y la limpiamos.
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return &Entry{Count: count, ResetAt: s.now().Add(ttl)}, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, count int, ttl time.Duration) (*Entry, error) {
	ok, err := s.client.SetNX(ctx, key, count, ttl).Result()
	if err != nil {
		return nil, err
	}
	if ok {
		return &Entry{Count: count, ResetAt: s.now().Add(ttl)}, nil
	}

	// Otro proceso arrancó la ventana primero: sumamos sobre la suya.
	return s.Increment(ctx, key)
}

func (s *RedisStore) Increment(ctx context.Context, key string) (*Entry, error) {
	p := s.client.Pipeline()
	incrRes := p.Incr(ctx, key)
	ttlRes := p.PTTL(ctx, key)

	if _, err := p.Exec(ctx); err != nil {
		return nil, err
	}

	count, err := incrRes.Result()
	if err != nil {
		return nil, err
	}

	ttl, err := ttlRes.Result()
	if err != nil {
		return nil, err
	}
	if ttl < 0 {
		// El INCR creó la clave porque no existía (o existía sin TTL).
		// El contrato dice que incrementar una clave ausente es un no-op,
		// así que deshacemos y devolvemos ausente.
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return &Entry{Count: int(count), ResetAt: s.now().Add(ttl)}, nil
}
