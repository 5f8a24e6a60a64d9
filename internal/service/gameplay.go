package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/localplay/tictactoe-lobby/internal/apperror"
	"github.com/localplay/tictactoe-lobby/internal/bot"
	"github.com/localplay/tictactoe-lobby/internal/entity"
)

// GameplayService turns raw cell intents into engine moves, lets the bot
// answer in solo games and pushes room games back to the directory. Results
// are recorded for the account making the concluding move; in a room the
// other side learns the outcome from the next poll and records nothing.
type GameplayService interface {
	NewGame() *entity.Game
	MakeSoloTurn(ctx context.Context, account *entity.Account, game *entity.Game, cell int) error
	MakeRoomTurn(ctx context.Context, account *entity.Account, roomID string, cell int) (*entity.Room, error)
	ResetRoomGame(ctx context.Context, account *entity.Account, roomID string) (*entity.Room, error)
}

type gameplayService struct {
	logger *slog.Logger

	accounts AccountService
	rooms    RoomService

	botDelay time.Duration
}

func NewGameplayService(logger *slog.Logger, accounts AccountService, rooms RoomService, botDelay time.Duration) GameplayService {
	return &gameplayService{
		logger:   logger,
		accounts: accounts,
		rooms:    rooms,
		botDelay: botDelay,
	}
}

func (that *gameplayService) NewGame() *entity.Game {
	return entity.NewGame()
}

// MakeSoloTurn applies the player's X, then has the bot answer as O after
// the pacing delay. The delay is cancelled with the context; a cancelled
// turn leaves the game waiting for the bot mark that never came, which a
// reset clears.
func (that *gameplayService) MakeSoloTurn(ctx context.Context, account *entity.Account, game *entity.Game, cell int) error {
	if err := game.MakeTurn(entity.MarkX, cell); err != nil {
		return err
	}

	if game.IsFinished() {
		that.accounts.RecordResult(ctx, account.ID, game.ResultFor(entity.MarkX))
		return nil
	}

	if that.botDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(that.botDelay):
		}
	}

	botCell, err := bot.ChooseMove(game.Board, entity.MarkO)
	if err != nil {
		return fmt.Errorf("bot failed to choose a move: %w", err)
	}

	if err = game.MakeTurn(entity.MarkO, botCell); err != nil {
		return fmt.Errorf("bot failed to make turn: %w", err)
	}

	if game.IsFinished() {
		that.accounts.RecordResult(ctx, account.ID, game.ResultFor(entity.MarkX))
	}

	return nil
}

// MakeRoomTurn applies a move to the room's shared game with the caller's
// mark and pushes the new state wholesale.
func (that *gameplayService) MakeRoomTurn(ctx context.Context, account *entity.Account, roomID string, cell int) (*entity.Room, error) {
	room, err := that.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if !room.HasGuest() {
		return nil, apperror.ErrRoomNotReady
	}

	mark := room.MarkOf(account.Username)
	if mark == "" {
		return nil, apperror.ErrNotYourTurn
	}

	if err = room.Game.MakeTurn(mark, cell); err != nil {
		return nil, err
	}

	that.rooms.PushGameState(ctx, roomID, &room.Game)

	if room.Game.IsFinished() {
		that.accounts.RecordResult(ctx, account.ID, room.Game.ResultFor(mark))
	}

	return room, nil
}

// ResetRoomGame swaps in a fresh game, for a rematch in place.
func (that *gameplayService) ResetRoomGame(ctx context.Context, account *entity.Account, roomID string) (*entity.Room, error) {
	room, err := that.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if room.MarkOf(account.Username) == "" {
		return nil, apperror.ErrNotYourTurn
	}

	room.Game = *entity.NewGame()
	that.rooms.PushGameState(ctx, roomID, &room.Game)

	return room, nil
}
