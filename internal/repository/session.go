package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/localplay/tictactoe-lobby/internal/apperror"
	"github.com/localplay/tictactoe-lobby/internal/entity"
	"github.com/localplay/tictactoe-lobby/internal/repository/storage"
)

const currentUserKey = "currentUser"

// SessionRepository holds the single logged-in account pointer. Callers are
// expected to store a sanitized copy only.
type SessionRepository interface {
	Current(ctx context.Context) (*entity.Account, error)
	Save(ctx context.Context, account *entity.Account) error
	Clear(ctx context.Context) error
}

type sessionRepository struct {
	store storage.Store
}

func NewSessionRepository(store storage.Store) SessionRepository {
	return &sessionRepository{
		store: store,
	}
}

func (that *sessionRepository) Current(ctx context.Context) (*entity.Account, error) {
	raw, err := that.store.Get(ctx, currentUserKey)

	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, apperror.ErrNoSession
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var account entity.Account
	if err = json.Unmarshal([]byte(raw), &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &account, nil
}

func (that *sessionRepository) Save(ctx context.Context, account *entity.Account) error {
	accountJSON, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err = that.store.Set(ctx, currentUserKey, string(accountJSON)); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	return nil
}

func (that *sessionRepository) Clear(ctx context.Context) error {
	if err := that.store.Delete(ctx, currentUserKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	return nil
}
