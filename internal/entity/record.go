package entity

const (
	ResultWin  = "win"
	ResultLoss = "loss"
	ResultDraw = "draw"
)

// GameRecord is one append-only history entry, written when a game concludes.
type GameRecord struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Result    string `json:"result"`
	Timestamp string `json:"timestamp"`
}
