package storage

import (
	"context"
	"errors"
)

var ErrKeyNotFound = errors.New("key not found")

// Store is the shared key-value port every repository writes through.
// Values are whole JSON collections replaced on every write: there is no
// locking, versioning, or merge, so concurrent writers are last-write-wins.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
