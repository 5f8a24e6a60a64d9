package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/localplay/tictactoe-lobby/internal/entity"
	"github.com/localplay/tictactoe-lobby/internal/service"
)

type handlerFunc func(ctx context.Context, sess *session, msg *Message) error

// Server is the UI shell reduced to a message surface: it reads user intents
// off each connection, calls into the services and writes outcomes back.
// Room-list snapshots arrive through the refresher subscription.
type Server struct {
	logger *slog.Logger

	accounts  service.AccountService
	rooms     service.RoomService
	gameplay  service.GameplayService
	refresher *service.Refresher

	upgrader websocket.Upgrader
	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, accounts service.AccountService, rooms service.RoomService, gameplay service.GameplayService, refresher *service.Refresher) *Server {
	server := &Server{
		logger:    logger,
		accounts:  accounts,
		rooms:     rooms,
		gameplay:  gameplay,
		refresher: refresher,

		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		handlers: make(map[string]handlerFunc),
	}

	server.handlers["account:register"] = server.handleRegister
	server.handlers["account:login"] = server.handleLogin
	server.handlers["account:logout"] = server.handleLogout
	server.handlers["account:history"] = server.handleHistory
	server.handlers["account:leaderboard"] = server.handleLeaderboard

	server.handlers["game:new"] = server.handleNewGame
	server.handlers["game:turn"] = server.handleGameTurn
	server.handlers["game:reset"] = server.handleNewGame

	server.handlers["room:create"] = server.handleCreateRoom
	server.handlers["room:join"] = server.handleJoinRoom
	server.handlers["room:leave"] = server.handleLeaveRoom
	server.handlers["room:list"] = server.handleListRooms
	server.handlers["room:turn"] = server.handleRoomTurn
	server.handlers["room:reset"] = server.handleResetRoom

	return server
}

// Start - starts the WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveConnection")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess := &session{conn: conn}

	snapshots, unsubscribe := that.refresher.Subscribe()
	defer unsubscribe()

	go that.forwardSnapshots(ctx, sess, snapshots)

	log.Info("connection established")

	for {
		var msg Message
		if err = conn.ReadJSON(&msg); err != nil {
			log.Debug("connection closed", "error", err)
			return
		}

		handler, ok := that.handlers[msg.Action]
		if !ok {
			if err = sess.sendError(msg.Action, "unknown action"); err != nil {
				log.Error("failed to send response", "error", err)
			}
			continue
		}

		if err = handler(ctx, sess, &msg); err != nil {
			log.Error("failed to process message", "action", msg.Action, "error", err)
		}
	}
}

// forwardSnapshots pushes every room-list snapshot and keeps the session's
// room reference honest: refreshed while it still exists, dropped when the
// room closed or expired out from under us.
func (that *Server) forwardSnapshots(ctx context.Context, sess *session, snapshots <-chan []*entity.Room) {
	log := that.logger.With("method", "forwardSnapshots")

	for {
		select {
		case <-ctx.Done():
			return
		case rooms, ok := <-snapshots:
			if !ok {
				return
			}

			if err := sess.send("room:list", &Payload{Rooms: rooms}); err != nil {
				log.Debug("failed to push room list", "error", err)
				return
			}

			roomID := sess.currentRoomID()
			if roomID == "" {
				continue
			}

			if room := findRoom(rooms, roomID); room != nil {
				if err := sess.send("room:update", &Payload{Room: room}); err != nil {
					log.Debug("failed to push room update", "error", err)
					return
				}
				continue
			}

			sess.setRoomID("")
			if err := sess.send("room:closed", nil); err != nil {
				log.Debug("failed to push room close", "error", err)
				return
			}
		}
	}
}

func findRoom(rooms []*entity.Room, roomID string) *entity.Room {
	for _, room := range rooms {
		if room.ID == roomID {
			return room
		}
	}

	return nil
}

// session is one connection's state. The read loop serializes intents, but
// the snapshot forwarder shares the connection and the room reference, hence
// the locks.
type session struct {
	conn *websocket.Conn

	writeMu sync.Mutex
	stateMu sync.Mutex

	account *entity.Account
	game    *entity.Game
	roomID  string
}

func (that *session) send(action string, payload *Payload) error {
	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err := that.conn.WriteJSON(&Response{Action: action, Payload: payload}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *session) sendError(action, message string) error {
	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err := that.conn.WriteJSON(&Response{Action: action, Error: message}); err != nil {
		return fmt.Errorf("failed to write error: %w", err)
	}

	return nil
}

func (that *session) currentAccount() *entity.Account {
	that.stateMu.Lock()
	defer that.stateMu.Unlock()

	return that.account
}

func (that *session) setAccount(account *entity.Account) {
	that.stateMu.Lock()
	defer that.stateMu.Unlock()

	that.account = account
}

func (that *session) currentGame() *entity.Game {
	that.stateMu.Lock()
	defer that.stateMu.Unlock()

	return that.game
}

func (that *session) setGame(game *entity.Game) {
	that.stateMu.Lock()
	defer that.stateMu.Unlock()

	that.game = game
}

func (that *session) currentRoomID() string {
	that.stateMu.Lock()
	defer that.stateMu.Unlock()

	return that.roomID
}

func (that *session) setRoomID(roomID string) {
	that.stateMu.Lock()
	defer that.stateMu.Unlock()

	that.roomID = roomID
}
