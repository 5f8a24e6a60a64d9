package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localplay/tictactoe-lobby/internal/apperror"
	"github.com/localplay/tictactoe-lobby/internal/entity"
	"github.com/localplay/tictactoe-lobby/internal/repository"
	"github.com/localplay/tictactoe-lobby/internal/repository/storage"
)

func newTestAccountService(t *testing.T) (AccountService, repository.AccountRepository, repository.SessionRepository) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.NewMemoryStorage()

	accountRepo := repository.NewAccountRepository(store)
	sessionRepo := repository.NewSessionRepository(store)
	historyRepo := repository.NewHistoryRepository(store)

	return NewAccountService(logger, accountRepo, sessionRepo, historyRepo), accountRepo, sessionRepo
}

func TestAccountService_Register(t *testing.T) {
	t.Run("Register_Success", func(t *testing.T) {
		ctx := context.Background()
		accountService, accountRepo, sessionRepo := newTestAccountService(t)

		// When: a new user registers
		account, err := accountService.Register(ctx, "alice", "hunter2")

		// Then: the returned account is sanitized and starts with zero stats
		require.NoError(t, err)
		assert.NotEmpty(t, account.ID)
		assert.Equal(t, "alice", account.Username)
		assert.Empty(t, account.Password)
		assert.Zero(t, account.Wins)
		assert.Zero(t, account.Losses)
		assert.Zero(t, account.Draws)
		assert.NotEmpty(t, account.CreatedAt)

		// Then: the stored copy keeps the password, the session copy does not
		stored, err := accountRepo.All(ctx)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, "hunter2", stored[0].Password)

		current, err := sessionRepo.Current(ctx)
		require.NoError(t, err)
		assert.Equal(t, account.ID, current.ID)
		assert.Empty(t, current.Password)
	})

	t.Run("Register_DuplicateName", func(t *testing.T) {
		ctx := context.Background()
		accountService, _, _ := newTestAccountService(t)

		_, err := accountService.Register(ctx, "alice", "hunter2")
		require.NoError(t, err)

		// When: another user registers with the same name
		_, err = accountService.Register(ctx, "alice", "other")

		// Then: ErrDuplicateName is returned
		require.ErrorIs(t, err, apperror.ErrDuplicateName)
	})

	t.Run("Register_NameIsCaseSensitive", func(t *testing.T) {
		ctx := context.Background()
		accountService, _, _ := newTestAccountService(t)

		_, err := accountService.Register(ctx, "alice", "hunter2")
		require.NoError(t, err)

		// When: a user registers with the same name in a different case
		_, err = accountService.Register(ctx, "Alice", "other")

		// Then: the name is treated as distinct
		require.NoError(t, err)
	})
}

func TestAccountService_Login(t *testing.T) {
	t.Run("Login_Success", func(t *testing.T) {
		ctx := context.Background()
		accountService, _, _ := newTestAccountService(t)

		registered, err := accountService.Register(ctx, "alice", "hunter2")
		require.NoError(t, err)
		accountService.Logout(ctx)

		// When: the user logs back in with the right credentials
		account, err := accountService.Login(ctx, "alice", "hunter2")

		// Then: the same sanitized account is returned and the session restored
		require.NoError(t, err)
		assert.Equal(t, registered.ID, account.ID)
		assert.Empty(t, account.Password)

		current, err := accountService.CurrentSession(ctx)
		require.NoError(t, err)
		assert.Equal(t, registered.ID, current.ID)
	})

	t.Run("Login_WrongPassword", func(t *testing.T) {
		ctx := context.Background()
		accountService, _, _ := newTestAccountService(t)

		_, err := accountService.Register(ctx, "alice", "hunter2")
		require.NoError(t, err)

		// When: login is attempted with a wrong password
		_, err = accountService.Login(ctx, "alice", "wrong")

		// Then: ErrInvalidCredentials is returned
		require.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	})

	t.Run("Login_UnknownUser", func(t *testing.T) {
		ctx := context.Background()
		accountService, _, _ := newTestAccountService(t)

		_, err := accountService.Login(ctx, "nobody", "hunter2")
		require.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	})
}

func TestAccountService_Logout(t *testing.T) {
	ctx := context.Background()
	accountService, _, _ := newTestAccountService(t)

	_, err := accountService.Register(ctx, "alice", "hunter2")
	require.NoError(t, err)

	// When: the user logs out
	accountService.Logout(ctx)

	// Then: there is no current session
	_, err = accountService.CurrentSession(ctx)
	require.ErrorIs(t, err, apperror.ErrNoSession)
}

func TestAccountService_RecordResult(t *testing.T) {
	t.Run("RecordResult_Win", func(t *testing.T) {
		ctx := context.Background()
		accountService, accountRepo, _ := newTestAccountService(t)

		account, err := accountService.Register(ctx, "alice", "hunter2")
		require.NoError(t, err)

		// When: a win is recorded
		accountService.RecordResult(ctx, account.ID, entity.ResultWin)

		// Then: the stored account and the session copy both show the win
		stored, err := accountRepo.All(ctx)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, 1, stored[0].Wins)
		assert.Zero(t, stored[0].Losses)

		current, err := accountService.CurrentSession(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, current.Wins)

		// Then: a history record exists for the account
		records := accountService.History(ctx, account.ID)
		require.Len(t, records, 1)
		assert.Equal(t, entity.ResultWin, records[0].Result)
		assert.Equal(t, account.ID, records[0].UserID)
	})

	t.Run("RecordResult_UnknownAccount", func(t *testing.T) {
		ctx := context.Background()
		accountService, accountRepo, _ := newTestAccountService(t)

		account, err := accountService.Register(ctx, "alice", "hunter2")
		require.NoError(t, err)

		// When: a result comes in for an account that does not exist
		accountService.RecordResult(ctx, "missing", entity.ResultLoss)

		// Then: nothing changes and no history record is written
		stored, err := accountRepo.All(ctx)
		require.NoError(t, err)
		assert.Zero(t, stored[0].Losses)
		assert.Empty(t, accountService.History(ctx, account.ID))
	})

	t.Run("History_FiltersByAccount", func(t *testing.T) {
		ctx := context.Background()
		accountService, _, _ := newTestAccountService(t)

		alice, err := accountService.Register(ctx, "alice", "hunter2")
		require.NoError(t, err)
		bob, err := accountService.Register(ctx, "bob", "swordfish")
		require.NoError(t, err)

		accountService.RecordResult(ctx, alice.ID, entity.ResultWin)
		accountService.RecordResult(ctx, bob.ID, entity.ResultLoss)
		accountService.RecordResult(ctx, alice.ID, entity.ResultDraw)

		// When: alice asks for her history
		records := accountService.History(ctx, alice.ID)

		// Then: only her two records come back, in order
		require.Len(t, records, 2)
		assert.Equal(t, entity.ResultWin, records[0].Result)
		assert.Equal(t, entity.ResultDraw, records[1].Result)
	})
}

func TestAccountService_Leaderboard(t *testing.T) {
	ctx := context.Background()
	accountService, accountRepo, _ := newTestAccountService(t)

	// Given: players with mixed records, one of them without any games
	err := accountRepo.SaveAll(ctx, []*entity.Account{
		{ID: "1", Username: "alice", Wins: 2, Losses: 1},        // score 6, rate 66.7
		{ID: "2", Username: "bob", Wins: 2, Draws: 1},           // score 7, rate 66.7
		{ID: "3", Username: "carol", Wins: 2},                   // score 6, rate 100
		{ID: "4", Username: "dave"},                             // never played
		{ID: "5", Username: "erin", Draws: 2, Losses: 2},        // score 2, rate 0
	})
	require.NoError(t, err)

	// When: the leaderboard is built
	standings := accountService.Leaderboard(ctx)

	// Then: idle players are excluded and the rest rank by score, win rate
	// breaking ties
	require.Len(t, standings, 4)
	assert.Equal(t, "bob", standings[0].Username)
	assert.Equal(t, 7, standings[0].Score)
	assert.Equal(t, "carol", standings[1].Username)
	assert.Equal(t, "alice", standings[2].Username)
	assert.Equal(t, "erin", standings[3].Username)

	assert.Equal(t, 3, standings[0].TotalGames)
	assert.InDelta(t, 100.0, standings[1].WinRate, 0.01)
	assert.InDelta(t, 0.0, standings[3].WinRate, 0.01)
}
