package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/localplay/tictactoe-lobby/internal/config"
	"github.com/localplay/tictactoe-lobby/internal/repository"
	"github.com/localplay/tictactoe-lobby/internal/repository/storage"
	"github.com/localplay/tictactoe-lobby/internal/service"
	"github.com/localplay/tictactoe-lobby/transport/rest"
	"github.com/localplay/tictactoe-lobby/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	accountRepo := repository.NewAccountRepository(redisStorage)
	sessionRepo := repository.NewSessionRepository(redisStorage)
	historyRepo := repository.NewHistoryRepository(redisStorage)
	roomRepo := repository.NewRoomRepository(redisStorage)

	accountService := service.NewAccountService(logger, accountRepo, sessionRepo, historyRepo)
	roomService := service.NewRoomService(logger, roomRepo, conf.Rooms.Retention)
	gameplayService := service.NewGameplayService(logger, accountService, roomService, conf.Bot.TurnDelay)
	refresher := service.NewRefresher(logger, roomService, conf.Rooms.RefreshInterval)

	go refresher.Run(ctx)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run WebSocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, accountService, roomService, gameplayService, refresher)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
