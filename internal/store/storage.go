// internal/store/storage.go
package store

import (
	"database/sql"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("resource already exists")
	QueryTimeoutDuration = time.Second * 5
)

type Storage struct {
	Users *UserStore
	Roles *RoleStore
}

func NewStorage(db *sql.DB) Storage {
	return Storage{
		Users: &UserStore{db: db},
		Roles: &RoleStore{db: db},
	}
}
