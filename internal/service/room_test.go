package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localplay/tictactoe-lobby/internal/apperror"
	"github.com/localplay/tictactoe-lobby/internal/entity"
	"github.com/localplay/tictactoe-lobby/internal/repository"
	"github.com/localplay/tictactoe-lobby/internal/repository/storage"
)

func newTestRoomService(t *testing.T) (*roomService, repository.RoomRepository) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	roomRepo := repository.NewRoomRepository(storage.NewMemoryStorage())

	roomService, ok := NewRoomService(logger, roomRepo, time.Hour).(*roomService)
	require.True(t, ok)

	return roomService, roomRepo
}

func TestRoomService_Create(t *testing.T) {
	host := &entity.Account{ID: "1", Username: "alice"}

	t.Run("Create_Success", func(t *testing.T) {
		ctx := context.Background()
		roomService, roomRepo := newTestRoomService(t)

		// When: a room is created
		room, err := roomService.Create(ctx, "  Friday match  ", host)

		// Then: the room is open, hosted and persisted with a fresh game
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(room.ID, "room_"))
		assert.Equal(t, "Friday match", room.Name)
		assert.Equal(t, "alice", room.Host)
		assert.Empty(t, room.Guest)
		assert.True(t, room.Active)
		assert.Equal(t, entity.MarkX, room.Game.Turn)

		stored, err := roomRepo.All(ctx)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, room.ID, stored[0].ID)
	})

	t.Run("Create_EmptyName", func(t *testing.T) {
		ctx := context.Background()
		roomService, _ := newTestRoomService(t)

		// When: the name is blank after trimming
		_, err := roomService.Create(ctx, "   ", host)

		// Then: ErrEmptyRoomName is returned
		require.ErrorIs(t, err, apperror.ErrEmptyRoomName)
	})

	t.Run("Create_IDShape", func(t *testing.T) {
		ctx := context.Background()
		roomService, _ := newTestRoomService(t)

		room, err := roomService.Create(ctx, "match", host)
		require.NoError(t, err)

		// Then: the id is room_<millis>_<9 char suffix>
		parts := strings.SplitN(room.ID, "_", 3)
		require.Len(t, parts, 3)
		assert.Equal(t, "room", parts[0])
		assert.Len(t, parts[2], 9)
	})
}

func TestRoomService_Join(t *testing.T) {
	host := &entity.Account{ID: "1", Username: "alice"}
	guest := &entity.Account{ID: "2", Username: "bob"}

	t.Run("Join_Success", func(t *testing.T) {
		ctx := context.Background()
		roomService, _ := newTestRoomService(t)

		created, err := roomService.Create(ctx, "match", host)
		require.NoError(t, err)

		// When: a second player joins
		room, err := roomService.Join(ctx, created.ID, guest)

		// Then: the guest slot is taken and persisted
		require.NoError(t, err)
		assert.Equal(t, "bob", room.Guest)

		fetched, err := roomService.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "bob", fetched.Guest)
	})

	t.Run("Join_RoomFull", func(t *testing.T) {
		ctx := context.Background()
		roomService, _ := newTestRoomService(t)

		created, err := roomService.Create(ctx, "match", host)
		require.NoError(t, err)

		_, err = roomService.Join(ctx, created.ID, guest)
		require.NoError(t, err)

		// When: a third player tries to join
		_, err = roomService.Join(ctx, created.ID, &entity.Account{ID: "3", Username: "carol"})

		// Then: ErrRoomFull is returned and the guest is unchanged
		require.ErrorIs(t, err, apperror.ErrRoomFull)

		room, err := roomService.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "bob", room.Guest)
	})

	t.Run("Join_RoomNotFound", func(t *testing.T) {
		ctx := context.Background()
		roomService, _ := newTestRoomService(t)

		_, err := roomService.Join(ctx, "room_0_missing00", guest)
		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})
}

func TestRoomService_Leave(t *testing.T) {
	host := &entity.Account{ID: "1", Username: "alice"}
	guest := &entity.Account{ID: "2", Username: "bob"}

	t.Run("Leave_HostClosesRoom", func(t *testing.T) {
		ctx := context.Background()
		roomService, _ := newTestRoomService(t)

		created, err := roomService.Create(ctx, "match", host)
		require.NoError(t, err)

		// When: the host leaves
		roomService.Leave(ctx, created.ID, host)

		// Then: the room disappears from the active listing
		assert.Empty(t, roomService.ListActive(ctx))
	})

	t.Run("Leave_GuestFreesSlot", func(t *testing.T) {
		ctx := context.Background()
		roomService, _ := newTestRoomService(t)

		created, err := roomService.Create(ctx, "match", host)
		require.NoError(t, err)
		_, err = roomService.Join(ctx, created.ID, guest)
		require.NoError(t, err)

		// When: the guest leaves
		roomService.Leave(ctx, created.ID, guest)

		// Then: the room stays open with a free guest slot
		room, err := roomService.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, room.Active)
		assert.Empty(t, room.Guest)
	})

	t.Run("Leave_UnknownRoomIsNoop", func(t *testing.T) {
		ctx := context.Background()
		roomService, _ := newTestRoomService(t)

		roomService.Leave(ctx, "room_0_missing00", host)
	})
}

func TestRoomService_ListActive(t *testing.T) {
	host := &entity.Account{ID: "1", Username: "alice"}

	t.Run("ListActive_PrunesExpiredRooms", func(t *testing.T) {
		ctx := context.Background()
		roomService, roomRepo := newTestRoomService(t)

		base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		roomService.now = func() time.Time { return base }

		stale, err := roomService.Create(ctx, "stale", host)
		require.NoError(t, err)

		roomService.now = func() time.Time { return base.Add(30 * time.Minute) }

		fresh, err := roomService.Create(ctx, "fresh", host)
		require.NoError(t, err)

		// When: listing after the first room aged past retention
		roomService.now = func() time.Time { return base.Add(time.Hour + time.Minute) }
		active := roomService.ListActive(ctx)

		// Then: only the fresh room is listed and the stale one is gone
		// from storage too
		require.Len(t, active, 1)
		assert.Equal(t, fresh.ID, active[0].ID)

		stored, err := roomRepo.All(ctx)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.NotEqual(t, stale.ID, stored[0].ID)
	})

	t.Run("ListActive_DropsClosedRooms", func(t *testing.T) {
		ctx := context.Background()
		roomService, roomRepo := newTestRoomService(t)

		created, err := roomService.Create(ctx, "match", host)
		require.NoError(t, err)
		roomService.Leave(ctx, created.ID, host)

		// When: listing after the host closed the room
		active := roomService.ListActive(ctx)

		// Then: the closed room is dropped from storage on the way out
		assert.Empty(t, active)

		stored, err := roomRepo.All(ctx)
		require.NoError(t, err)
		assert.Empty(t, stored)
	})
}

func TestRoomService_PushGameState(t *testing.T) {
	ctx := context.Background()
	roomService, _ := newTestRoomService(t)

	host := &entity.Account{ID: "1", Username: "alice"}
	created, err := roomService.Create(ctx, "match", host)
	require.NoError(t, err)

	// Given: a game where X already moved
	game := entity.NewGame()
	require.NoError(t, game.MakeTurn(entity.MarkX, 4))

	// When: the state is pushed into the room
	roomService.PushGameState(ctx, created.ID, game)

	// Then: the stored room carries the new board wholesale
	room, err := roomService.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MarkX, room.Game.Board[4])
	assert.Equal(t, entity.MarkO, room.Game.Turn)
}
