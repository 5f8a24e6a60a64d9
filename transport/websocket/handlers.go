package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/localplay/tictactoe-lobby/internal/apperror"
)

func (that *Server) handleRegister(ctx context.Context, sess *session, msg *Message) error {
	log := that.logger.With("method", "handleRegister")

	var req Payload
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	account, err := that.accounts.Register(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, apperror.ErrDuplicateName) {
			return sess.sendError(msg.Action, "username is already taken")
		}

		log.Error("registration failed", "error", err)
		return sess.sendError(msg.Action, "registration failed")
	}

	sess.setAccount(account)

	return sess.send(msg.Action, &Payload{Account: account})
}

func (that *Server) handleLogin(ctx context.Context, sess *session, msg *Message) error {
	log := that.logger.With("method", "handleLogin")

	var req Payload
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	account, err := that.accounts.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, apperror.ErrInvalidCredentials) {
			return sess.sendError(msg.Action, "invalid username or password")
		}

		log.Error("login failed", "error", err)
		return sess.sendError(msg.Action, "login failed")
	}

	sess.setAccount(account)

	return sess.send(msg.Action, &Payload{Account: account})
}

func (that *Server) handleLogout(ctx context.Context, sess *session, msg *Message) error {
	if account := sess.currentAccount(); account != nil {
		if roomID := sess.currentRoomID(); roomID != "" {
			that.rooms.Leave(ctx, roomID, account)
		}
		that.accounts.Logout(ctx)
	}

	sess.setAccount(nil)
	sess.setGame(nil)
	sess.setRoomID("")

	return sess.send(msg.Action, nil)
}

func (that *Server) handleHistory(ctx context.Context, sess *session, msg *Message) error {
	account := sess.currentAccount()
	if account == nil {
		return sess.sendError(msg.Action, "login required")
	}

	records := that.accounts.History(ctx, account.ID)

	return sess.send(msg.Action, &Payload{Records: records})
}

func (that *Server) handleLeaderboard(ctx context.Context, sess *session, msg *Message) error {
	standings := that.accounts.Leaderboard(ctx)

	return sess.send(msg.Action, &Payload{Standings: standings})
}

// handleNewGame serves both game:new and game:reset; a solo reset is just a
// fresh game in place.
func (that *Server) handleNewGame(_ context.Context, sess *session, msg *Message) error {
	if sess.currentAccount() == nil {
		return sess.sendError(msg.Action, "login required")
	}

	game := that.gameplay.NewGame()
	sess.setGame(game)

	return sess.send(msg.Action, &Payload{Game: game})
}

func (that *Server) handleGameTurn(ctx context.Context, sess *session, msg *Message) error {
	account := sess.currentAccount()
	if account == nil {
		return sess.sendError(msg.Action, "login required")
	}

	game := sess.currentGame()
	if game == nil {
		return sess.sendError(msg.Action, "no game in progress")
	}

	var req Payload
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if req.Cell == nil {
		return sess.sendError(msg.Action, "cell is required")
	}

	if err := that.gameplay.MakeSoloTurn(ctx, account, game, *req.Cell); err != nil {
		// solo moves out of turn or onto dead cells are inert: the click
		// simply does nothing
		if isInertMove(err) || errors.Is(err, apperror.ErrNotYourTurn) {
			return nil
		}

		return err
	}

	return sess.send(msg.Action, &Payload{Game: game})
}

func (that *Server) handleCreateRoom(ctx context.Context, sess *session, msg *Message) error {
	log := that.logger.With("method", "handleCreateRoom")

	account := sess.currentAccount()
	if account == nil {
		return sess.sendError(msg.Action, "login required")
	}

	var req Payload
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	room, err := that.rooms.Create(ctx, req.Name, account)
	if err != nil {
		if errors.Is(err, apperror.ErrEmptyRoomName) {
			return sess.sendError(msg.Action, "room name is required")
		}

		log.Error("failed to create room", "error", err)
		return sess.sendError(msg.Action, "failed to create room")
	}

	sess.setRoomID(room.ID)

	return sess.send(msg.Action, &Payload{Room: room})
}

func (that *Server) handleJoinRoom(ctx context.Context, sess *session, msg *Message) error {
	log := that.logger.With("method", "handleJoinRoom")

	account := sess.currentAccount()
	if account == nil {
		return sess.sendError(msg.Action, "login required")
	}

	var req Payload
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	room, err := that.rooms.Join(ctx, req.RoomID, account)
	if err != nil {
		switch {
		case errors.Is(err, apperror.ErrRoomNotFound):
			return sess.sendError(msg.Action, "room not found")
		case errors.Is(err, apperror.ErrRoomFull):
			return sess.sendError(msg.Action, "room is full")
		default:
			log.Error("failed to join room", "error", err)
			return sess.sendError(msg.Action, "failed to join room")
		}
	}

	sess.setRoomID(room.ID)

	return sess.send(msg.Action, &Payload{Room: room})
}

func (that *Server) handleLeaveRoom(ctx context.Context, sess *session, msg *Message) error {
	account := sess.currentAccount()
	if account == nil {
		return sess.sendError(msg.Action, "login required")
	}

	if roomID := sess.currentRoomID(); roomID != "" {
		that.rooms.Leave(ctx, roomID, account)
	}

	sess.setRoomID("")

	return sess.send(msg.Action, nil)
}

func (that *Server) handleListRooms(ctx context.Context, sess *session, msg *Message) error {
	rooms := that.rooms.ListActive(ctx)

	return sess.send(msg.Action, &Payload{Rooms: rooms})
}

func (that *Server) handleRoomTurn(ctx context.Context, sess *session, msg *Message) error {
	account := sess.currentAccount()
	if account == nil {
		return sess.sendError(msg.Action, "login required")
	}

	roomID := sess.currentRoomID()
	if roomID == "" {
		return sess.sendError(msg.Action, "not in a room")
	}

	var req Payload
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if req.Cell == nil {
		return sess.sendError(msg.Action, "cell is required")
	}

	room, err := that.gameplay.MakeRoomTurn(ctx, account, roomID, *req.Cell)
	if err != nil {
		switch {
		case errors.Is(err, apperror.ErrRoomNotReady):
			return sess.sendError(msg.Action, "waiting for an opponent to join")
		case errors.Is(err, apperror.ErrNotYourTurn):
			return sess.sendError(msg.Action, "not your turn")
		case errors.Is(err, apperror.ErrRoomNotFound):
			sess.setRoomID("")
			return sess.sendError(msg.Action, "room not found")
		case isInertMove(err):
			return nil
		default:
			return err
		}
	}

	return sess.send(msg.Action, &Payload{Room: room})
}

func (that *Server) handleResetRoom(ctx context.Context, sess *session, msg *Message) error {
	account := sess.currentAccount()
	if account == nil {
		return sess.sendError(msg.Action, "login required")
	}

	roomID := sess.currentRoomID()
	if roomID == "" {
		return sess.sendError(msg.Action, "not in a room")
	}

	room, err := that.gameplay.ResetRoomGame(ctx, account, roomID)
	if err != nil {
		if errors.Is(err, apperror.ErrRoomNotFound) {
			sess.setRoomID("")
			return sess.sendError(msg.Action, "room not found")
		}

		return err
	}

	return sess.send(msg.Action, &Payload{Room: room})
}

// isInertMove covers the rejections the UI swallows: the click just has no
// effect.
func isInertMove(err error) bool {
	return errors.Is(err, apperror.ErrCellOccupied) ||
		errors.Is(err, apperror.ErrGameFinished) ||
		errors.Is(err, apperror.ErrInvalidCell)
}
