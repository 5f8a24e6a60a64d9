package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/localplay/tictactoe-lobby/internal/entity"
	"github.com/localplay/tictactoe-lobby/internal/repository/storage"
)

const historyKey = "gameHistory"

// HistoryRepository appends to the shared game log. Append is a
// read-modify-write of the whole collection, same as every other key.
type HistoryRepository interface {
	All(ctx context.Context) ([]*entity.GameRecord, error)
	Append(ctx context.Context, record *entity.GameRecord) error
}

type historyRepository struct {
	store storage.Store
}

func NewHistoryRepository(store storage.Store) HistoryRepository {
	return &historyRepository{
		store: store,
	}
}

func (that *historyRepository) All(ctx context.Context) ([]*entity.GameRecord, error) {
	raw, err := that.store.Get(ctx, historyKey)

	if errors.Is(err, storage.ErrKeyNotFound) {
		return []*entity.GameRecord{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	var records []*entity.GameRecord
	if err = json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}

	return records, nil
}

func (that *historyRepository) Append(ctx context.Context, record *entity.GameRecord) error {
	records, err := that.All(ctx)
	if err != nil {
		return err
	}

	records = append(records, record)

	recordsJSON, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	if err = that.store.Set(ctx, historyKey, string(recordsJSON)); err != nil {
		return fmt.Errorf("failed to set history: %w", err)
	}

	return nil
}
