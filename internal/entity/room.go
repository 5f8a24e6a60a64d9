package entity

import "time"

// Room is one lobby entry pairing a host and an optional guest around a
// shared game state. CreatedAt is unix milliseconds. A room with Active
// false is closed: the host left, only listing filters notice it.
type Room struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Host      string `json:"host"`
	Guest     string `json:"guest,omitempty"`
	Game      Game   `json:"gameState"`
	CreatedAt int64  `json:"createdAt"`
	Active    bool   `json:"isActive"`
}

func (that *Room) HasGuest() bool {
	return that.Guest != ""
}

// Expired reports whether the room fell out of the retention window.
func (that *Room) Expired(now time.Time, retention time.Duration) bool {
	return now.UnixMilli()-that.CreatedAt >= retention.Milliseconds()
}

// MarkOf returns the mark a participant plays: the host is X, the guest is O.
// Empty for anyone else.
func (that *Room) MarkOf(username string) string {
	switch username {
	case that.Host:
		return MarkX
	case that.Guest:
		return MarkO
	default:
		return ""
	}
}
