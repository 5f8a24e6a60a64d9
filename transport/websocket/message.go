package websocket

import (
	"encoding/json"

	"github.com/localplay/tictactoe-lobby/internal/entity"
	"github.com/localplay/tictactoe-lobby/internal/service"
)

// Message is one client intent: an action name plus an action-specific
// payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response mirrors Message on the way out; Error carries the user-facing
// text of a rejected action, meant to be shown as-is.
type Response struct {
	Action  string   `json:"action"`
	Payload *Payload `json:"payload,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Payload is the union of everything an action reads or returns.
type Payload struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Name     string `json:"name,omitempty"`
	RoomID   string `json:"roomId,omitempty"`
	Cell     *int   `json:"cell,omitempty"`

	Account   *entity.Account      `json:"account,omitempty"`
	Game      *entity.Game         `json:"game,omitempty"`
	Room      *entity.Room         `json:"room,omitempty"`
	Rooms     []*entity.Room       `json:"rooms,omitempty"`
	Records   []*entity.GameRecord `json:"records,omitempty"`
	Standings []*service.Standing  `json:"standings,omitempty"`
}
