// internal/store/cache/storage.go
package cache

import (
	"context"

	"GopherStarter/internal/store"

	"github.com/go-redis/redis/v8"
)

type Storage struct {
	Users UserCacher
}

// UserCacher es la interfaz de la caché de usuarios; un Get que devuelve
// (nil, nil) es un cache miss.
type UserCacher interface {
	Get(context.Context, int64) (*store.User, error)
	Set(context.Context, *store.User) error
	Delete(context.Context, int64) error
}

func NewRedisStorage(rdb *redis.Client) Storage {
	return Storage{
		Users: &UserStore{rdb: rdb},
	}
}

// NewNoopStorage devuelve una caché que no guarda nada, para correr sin
// Redis: todos los Get son cache miss.
func NewNoopStorage() Storage {
	return Storage{
		Users: noopUserCache{},
	}
}

type noopUserCache struct{}

func (noopUserCache) Get(context.Context, int64) (*store.User, error) { return nil, nil }
func (noopUserCache) Set(context.Context, *store.User) error          { return nil }
func (noopUserCache) Delete(context.Context, int64) error             { return nil }
