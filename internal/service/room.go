package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/localplay/tictactoe-lobby/internal/apperror"
	"github.com/localplay/tictactoe-lobby/internal/entity"
	"github.com/localplay/tictactoe-lobby/internal/metrics"
	"github.com/localplay/tictactoe-lobby/internal/repository"
)

const roomIDSuffixLen = 9

// RoomService is the room directory: create, join, leave, list and the
// wholesale game-state overwrite. Everything operates on the shared room
// collection with last-write-wins semantics; there is no cross-session
// ordering, only the periodic refresh.
type RoomService interface {
	ListActive(ctx context.Context) []*entity.Room
	Create(ctx context.Context, name string, host *entity.Account) (*entity.Room, error)
	Join(ctx context.Context, roomID string, guest *entity.Account) (*entity.Room, error)
	Leave(ctx context.Context, roomID string, account *entity.Account)
	PushGameState(ctx context.Context, roomID string, game *entity.Game)
	GetByID(ctx context.Context, roomID string) (*entity.Room, error)
}

type roomService struct {
	logger *slog.Logger

	rooms     repository.RoomRepository
	retention time.Duration

	now func() time.Time
}

func NewRoomService(logger *slog.Logger, rooms repository.RoomRepository, retention time.Duration) RoomService {
	return &roomService{
		logger:    logger,
		rooms:     rooms,
		retention: retention,
		now:       time.Now,
	}
}

// ListActive filters out closed and expired rooms and writes the pruned
// collection back, so every listing doubles as cleanup.
func (that *roomService) ListActive(ctx context.Context) []*entity.Room {
	log := that.logger.With("method", "ListActive")

	rooms, err := that.rooms.All(ctx)
	if err != nil {
		log.Error("failed to load rooms", "error", err)
		return []*entity.Room{}
	}

	now := that.now()

	active := make([]*entity.Room, 0, len(rooms))
	for _, room := range rooms {
		if room.Active && !room.Expired(now, that.retention) {
			active = append(active, room)
		}
	}

	if len(active) != len(rooms) {
		if err = that.rooms.SaveAll(ctx, active); err != nil {
			log.Error("failed to prune rooms", "error", err)
		}
	}

	return active
}

func (that *roomService) Create(ctx context.Context, name string, host *entity.Account) (*entity.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ErrEmptyRoomName
	}

	room := &entity.Room{
		ID:        that.newRoomID(),
		Name:      name,
		Host:      host.Username,
		Game:      *entity.NewGame(),
		CreatedAt: that.now().UnixMilli(),
		Active:    true,
	}

	rooms, err := that.rooms.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}

	rooms = append(rooms, room)
	if err = that.rooms.SaveAll(ctx, rooms); err != nil {
		return nil, fmt.Errorf("failed to save rooms: %w", err)
	}

	metrics.RoomsCreated.Inc()

	return room, nil
}

func (that *roomService) Join(ctx context.Context, roomID string, guest *entity.Account) (*entity.Room, error) {
	rooms, err := that.rooms.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}

	room := findRoom(rooms, roomID)
	if room == nil {
		return nil, apperror.ErrRoomNotFound
	}

	if room.HasGuest() {
		return nil, apperror.ErrRoomFull
	}

	room.Guest = guest.Username
	if err = that.rooms.SaveAll(ctx, rooms); err != nil {
		return nil, fmt.Errorf("failed to save rooms: %w", err)
	}

	return room, nil
}

// Leave closes the room when the host walks away and merely frees the guest
// slot otherwise. A room that no longer exists is a no-op.
func (that *roomService) Leave(ctx context.Context, roomID string, account *entity.Account) {
	log := that.logger.With("method", "Leave", "roomID", roomID)

	rooms, err := that.rooms.All(ctx)
	if err != nil {
		log.Error("failed to load rooms", "error", err)
		return
	}

	room := findRoom(rooms, roomID)
	if room == nil {
		return
	}

	switch account.Username {
	case room.Host:
		room.Active = false
	case room.Guest:
		room.Guest = ""
	default:
		return
	}

	if err = that.rooms.SaveAll(ctx, rooms); err != nil {
		log.Error("failed to save rooms", "error", err)
	}
}

// PushGameState overwrites the embedded game wholesale. No merge, no version
// check: whichever session writes last wins.
func (that *roomService) PushGameState(ctx context.Context, roomID string, game *entity.Game) {
	log := that.logger.With("method", "PushGameState", "roomID", roomID)

	rooms, err := that.rooms.All(ctx)
	if err != nil {
		log.Error("failed to load rooms", "error", err)
		return
	}

	room := findRoom(rooms, roomID)
	if room == nil {
		log.Debug("room vanished, state dropped")
		return
	}

	room.Game = *game
	if err = that.rooms.SaveAll(ctx, rooms); err != nil {
		log.Error("failed to save rooms", "error", err)
	}
}

func (that *roomService) GetByID(ctx context.Context, roomID string) (*entity.Room, error) {
	rooms, err := that.rooms.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}

	room := findRoom(rooms, roomID)
	if room == nil {
		return nil, apperror.ErrRoomNotFound
	}

	return room, nil
}

// newRoomID combines a millisecond timestamp with a short random suffix.
// Collisions are possible in principle, astronomically unlikely at
// human-triggered rates.
func (that *roomService) newRoomID() string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

	suffix := make([]byte, roomIDSuffixLen)
	for i := range suffix {
		suffix[i] = alphabet[rand.Intn(len(alphabet))] //nolint: gosec // it's ok
	}

	return fmt.Sprintf("room_%d_%s", that.now().UnixMilli(), suffix)
}

func findRoom(rooms []*entity.Room, roomID string) *entity.Room {
	for _, room := range rooms {
		if room.ID == roomID {
			return room
		}
	}

	return nil
}
