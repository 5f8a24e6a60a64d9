package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/localplay/tictactoe-lobby/internal/entity"
	"github.com/localplay/tictactoe-lobby/internal/repository/storage"
)

const roomsKey = "ttt_rooms"

// RoomRepository reads and replaces the whole room collection. Two writers
// racing on the same collection clobber each other; the directory accepts
// that.
type RoomRepository interface {
	All(ctx context.Context) ([]*entity.Room, error)
	SaveAll(ctx context.Context, rooms []*entity.Room) error
}

type roomRepository struct {
	store storage.Store
}

func NewRoomRepository(store storage.Store) RoomRepository {
	return &roomRepository{
		store: store,
	}
}

func (that *roomRepository) All(ctx context.Context) ([]*entity.Room, error) {
	raw, err := that.store.Get(ctx, roomsKey)

	if errors.Is(err, storage.ErrKeyNotFound) {
		return []*entity.Room{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get rooms: %w", err)
	}

	var rooms []*entity.Room
	if err = json.Unmarshal([]byte(raw), &rooms); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rooms: %w", err)
	}

	return rooms, nil
}

func (that *roomRepository) SaveAll(ctx context.Context, rooms []*entity.Room) error {
	roomsJSON, err := json.Marshal(rooms)
	if err != nil {
		return fmt.Errorf("failed to marshal rooms: %w", err)
	}

	if err = that.store.Set(ctx, roomsKey, string(roomsJSON)); err != nil {
		return fmt.Errorf("failed to set rooms: %w", err)
	}

	return nil
}
