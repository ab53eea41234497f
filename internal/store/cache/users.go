// internal/store/cache/users.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"GopherStarter/internal/store"

	"github.com/go-redis/redis/v8"
)

// UserExpTime acota cuánto vive un usuario en la caché; pasado ese tiempo
// se vuelve a leer de la base de datos.
const UserExpTime = time.Minute

type UserStore struct {
	rdb *redis.Client
}

func userCacheKey(userID int64) string {
	return fmt.Sprintf("user-%d", userID)
}

func (s *UserStore) Get(ctx context.Context, userID int64) (*store.User, error) {
	data, err := s.rdb.Get(ctx, userCacheKey(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var user store.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) Set(ctx context.Context, user *store.User) error {
	json, err := json.Marshal(user)
	if err != nil {
		return err
	}

	return s.rdb.SetEX(ctx, userCacheKey(user.ID), json, UserExpTime).Err()
}

func (s *UserStore) Delete(ctx context.Context, userID int64) error {
	return s.rdb.Del(ctx, userCacheKey(userID)).Err()
}
