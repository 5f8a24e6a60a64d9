package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localplay/tictactoe-lobby/internal/entity"
	"github.com/localplay/tictactoe-lobby/testing/suite"
)

func TestRoomRepository_SaveAll(t *testing.T) {
	ctx, st := suite.New(t)

	roomRepo := NewRoomRepository(st.Storage)

	// Given: a room collection with one open room
	rooms := []*entity.Room{
		{
			ID:        "room_1717243200000_abc123def",
			Name:      "Friday match",
			Host:      "alice",
			Game:      *entity.NewGame(),
			CreatedAt: 1717243200000,
			Active:    true,
		},
	}

	// When: SaveAll is called
	err := roomRepo.SaveAll(ctx, rooms)

	// Then: no error should be returned, and the collection is stored
	require.NoError(t, err)
}

func TestRoomRepository_All(t *testing.T) {
	t.Run("All_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage)

		// Given: a stored collection of two rooms
		saved := []*entity.Room{
			{ID: "room_1_aaaaaaaaa", Name: "first", Host: "alice", Game: *entity.NewGame(), Active: true},
			{ID: "room_2_bbbbbbbbb", Name: "second", Host: "bob", Guest: "carol", Game: *entity.NewGame(), Active: true},
		}

		err := roomRepo.SaveAll(ctx, saved)
		require.NoError(t, err)

		// When: All is called
		rooms, err := roomRepo.All(ctx)

		// Then: the retrieved collection should match the saved one
		require.NoError(t, err)
		require.Len(t, rooms, 2)
		assert.Equal(t, saved[0].ID, rooms[0].ID)
		assert.Equal(t, saved[1].Guest, rooms[1].Guest)
		assert.Equal(t, entity.MarkX, rooms[0].Game.Turn)
	})

	t.Run("All_Empty", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage)

		// When: All is called on a fresh database
		rooms, err := roomRepo.All(ctx)

		// Then: an empty collection is returned, not an error
		require.NoError(t, err)
		assert.Empty(t, rooms)
	})

	t.Run("All_ReplacesCollection", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage)

		// Given: a stored collection of one room
		err := roomRepo.SaveAll(ctx, []*entity.Room{
			{ID: "room_1_aaaaaaaaa", Name: "first", Host: "alice", Game: *entity.NewGame(), Active: true},
		})
		require.NoError(t, err)

		// When: the whole collection is replaced with an empty one
		err = roomRepo.SaveAll(ctx, []*entity.Room{})
		require.NoError(t, err)

		// Then: the previous contents are gone
		rooms, err := roomRepo.All(ctx)
		require.NoError(t, err)
		assert.Empty(t, rooms)
	})
}
