package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/localplay/tictactoe-lobby/internal/entity"
	"github.com/localplay/tictactoe-lobby/internal/repository/storage"
)

const usersKey = "users"

// AccountRepository reads and replaces the whole account collection.
type AccountRepository interface {
	All(ctx context.Context) ([]*entity.Account, error)
	SaveAll(ctx context.Context, accounts []*entity.Account) error
}

type accountRepository struct {
	store storage.Store
}

func NewAccountRepository(store storage.Store) AccountRepository {
	return &accountRepository{
		store: store,
	}
}

func (that *accountRepository) All(ctx context.Context) ([]*entity.Account, error) {
	raw, err := that.store.Get(ctx, usersKey)

	if errors.Is(err, storage.ErrKeyNotFound) {
		return []*entity.Account{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}

	var accounts []*entity.Account
	if err = json.Unmarshal([]byte(raw), &accounts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal accounts: %w", err)
	}

	return accounts, nil
}

func (that *accountRepository) SaveAll(ctx context.Context, accounts []*entity.Account) error {
	accountsJSON, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("failed to marshal accounts: %w", err)
	}

	if err = that.store.Set(ctx, usersKey, string(accountsJSON)); err != nil {
		return fmt.Errorf("failed to set accounts: %w", err)
	}

	return nil
}
