package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/localplay/tictactoe-lobby/internal/apperror"
	"github.com/localplay/tictactoe-lobby/internal/entity"
	"github.com/localplay/tictactoe-lobby/internal/metrics"
	"github.com/localplay/tictactoe-lobby/internal/repository"
)

// AccountService owns registration, login, the current session and the
// per-account stats. Register and Login surface their errors so the shell
// can tell the user; everything else degrades to "no data" on storage
// trouble and only logs.
type AccountService interface {
	Register(ctx context.Context, username, password string) (*entity.Account, error)
	Login(ctx context.Context, username, password string) (*entity.Account, error)
	Logout(ctx context.Context)
	CurrentSession(ctx context.Context) (*entity.Account, error)

	RecordResult(ctx context.Context, accountID, result string)
	History(ctx context.Context, accountID string) []*entity.GameRecord
	Leaderboard(ctx context.Context) []*Standing
}

// Standing is one leaderboard row. Score is 3 per win plus 1 per draw.
type Standing struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	Draws      int     `json:"draws"`
	TotalGames int     `json:"totalGames"`
	WinRate    float64 `json:"winRate"`
	Score      int     `json:"score"`
}

type accountService struct {
	logger *slog.Logger

	accounts repository.AccountRepository
	sessions repository.SessionRepository
	history  repository.HistoryRepository

	now func() time.Time
}

func NewAccountService(logger *slog.Logger, accounts repository.AccountRepository, sessions repository.SessionRepository, history repository.HistoryRepository) AccountService {
	return &accountService{
		logger:   logger,
		accounts: accounts,
		sessions: sessions,
		history:  history,
		now:      time.Now,
	}
}

func (that *accountService) Register(ctx context.Context, username, password string) (*entity.Account, error) {
	accounts, err := that.accounts.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	// uniqueness is case-sensitive
	for _, account := range accounts {
		if account.Username == username {
			return nil, apperror.ErrDuplicateName
		}
	}

	account := &entity.Account{
		ID:        uuid.NewString(),
		Username:  username,
		Password:  password,
		CreatedAt: that.now().UTC().Format(time.RFC3339),
	}

	accounts = append(accounts, account)
	if err = that.accounts.SaveAll(ctx, accounts); err != nil {
		return nil, fmt.Errorf("failed to save accounts: %w", err)
	}

	sanitized := account.Sanitized()
	if err = that.sessions.Save(ctx, sanitized); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	return sanitized, nil
}

func (that *accountService) Login(ctx context.Context, username, password string) (*entity.Account, error) {
	accounts, err := that.accounts.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	for _, account := range accounts {
		if account.Username == username && account.Password == password {
			sanitized := account.Sanitized()
			if err = that.sessions.Save(ctx, sanitized); err != nil {
				return nil, fmt.Errorf("failed to start session: %w", err)
			}

			return sanitized, nil
		}
	}

	return nil, apperror.ErrInvalidCredentials
}

func (that *accountService) Logout(ctx context.Context) {
	if err := that.sessions.Clear(ctx); err != nil {
		that.logger.Error("failed to clear session", "error", err)
	}
}

func (that *accountService) CurrentSession(ctx context.Context) (*entity.Account, error) {
	account, err := that.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}

	return account, nil
}

// RecordResult bumps exactly one counter, refreshes the session copy and
// appends a history record. Failures are logged and swallowed: a lost tally
// never takes the game down.
func (that *accountService) RecordResult(ctx context.Context, accountID, result string) {
	log := that.logger.With("method", "RecordResult", "accountID", accountID)

	accounts, err := that.accounts.All(ctx)
	if err != nil {
		log.Error("failed to load accounts", "error", err)
		return
	}

	var account *entity.Account
	for _, candidate := range accounts {
		if candidate.ID == accountID {
			account = candidate
			break
		}
	}

	if account == nil {
		log.Warn("account not found, result dropped")
		return
	}

	switch result {
	case entity.ResultWin:
		account.Wins++
	case entity.ResultLoss:
		account.Losses++
	case entity.ResultDraw:
		account.Draws++
	default:
		log.Warn("unknown result, dropped", "result", result)
		return
	}

	if err = that.accounts.SaveAll(ctx, accounts); err != nil {
		log.Error("failed to save accounts", "error", err)
	}

	if current, sessErr := that.sessions.Current(ctx); sessErr == nil && current.ID == accountID {
		if err = that.sessions.Save(ctx, account.Sanitized()); err != nil {
			log.Error("failed to refresh session", "error", err)
		}
	}

	record := &entity.GameRecord{
		ID:        uuid.NewString(),
		UserID:    accountID,
		Result:    result,
		Timestamp: that.now().UTC().Format(time.RFC3339),
	}

	if err = that.history.Append(ctx, record); err != nil {
		log.Error("failed to append history record", "error", err)
	}

	metrics.GamesFinished.WithLabelValues(result).Inc()
}

func (that *accountService) History(ctx context.Context, accountID string) []*entity.GameRecord {
	records, err := that.history.All(ctx)
	if err != nil {
		that.logger.Error("failed to load history", "error", err)
		return []*entity.GameRecord{}
	}

	mine := make([]*entity.GameRecord, 0, len(records))
	for _, record := range records {
		if record.UserID == accountID {
			mine = append(mine, record)
		}
	}

	return mine
}

// Leaderboard ranks everyone with at least one finished game by score,
// win rate breaking ties.
func (that *accountService) Leaderboard(ctx context.Context) []*Standing {
	accounts, err := that.accounts.All(ctx)
	if err != nil {
		that.logger.Error("failed to load accounts", "error", err)
		return []*Standing{}
	}

	standings := make([]*Standing, 0, len(accounts))
	for _, account := range accounts {
		total := account.TotalGames()
		if total == 0 {
			continue
		}

		standings = append(standings, &Standing{
			ID:         account.ID,
			Username:   account.Username,
			Wins:       account.Wins,
			Losses:     account.Losses,
			Draws:      account.Draws,
			TotalGames: total,
			WinRate:    float64(account.Wins) / float64(total) * 100,
			Score:      account.Wins*3 + account.Draws,
		})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Score != standings[j].Score {
			return standings[i].Score > standings[j].Score
		}
		return standings[i].WinRate > standings[j].WinRate
	})

	return standings
}
