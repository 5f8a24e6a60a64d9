package entity

import (
	"fmt"

	"github.com/localplay/tictactoe-lobby/internal/apperror"
)

const (
	MarkX   = "X"
	MarkO   = "O"
	MarkTie = "-"

	EmptyCell = ""
)

var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Game is one match state. It is also the blob embedded in a room record,
// so the field names match the stored gameState shape.
type Game struct {
	Board  [9]string `json:"board"`
	Turn   string    `json:"currentPlayer"`
	Winner string    `json:"winner"`
	Draw   bool      `json:"isDraw"`
	Over   bool      `json:"gameOver"`
}

func NewGame() *Game {
	return &Game{
		Board: [9]string{EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell},
		Turn:  MarkX,
	}
}

// MakeTurn places mark on cell and advances the game.
// Turns alternate strictly; a terminal game rejects every move.
func (that *Game) MakeTurn(mark string, cell int) error {
	if that.Over {
		return apperror.ErrGameFinished
	}

	if cell < 0 || cell >= len(that.Board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if that.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	if that.Board[cell] != EmptyCell {
		return apperror.ErrCellOccupied
	}

	that.Board[cell] = mark
	that.updateState(mark)

	return nil
}

func (that *Game) updateState(mark string) {
	switch result := DetermineResult(that.Board); result {
	// one player wins
	case MarkX, MarkO:
		that.Winner = result
		that.Over = true
		that.Turn = ""
	// tie
	case MarkTie:
		that.Draw = true
		that.Over = true
		that.Turn = ""
	// game continue
	default:
		that.Turn = OpposingMark(mark)
	}
}

func (that *Game) IsFinished() bool {
	return that.Over
}

// ResultFor reports the outcome from mark's point of view.
// Only meaningful once the game is over.
func (that *Game) ResultFor(mark string) string {
	switch {
	case that.Draw:
		return ResultDraw
	case that.Winner == mark:
		return ResultWin
	default:
		return ResultLoss
	}
}

func OpposingMark(mark string) string {
	if mark == MarkX {
		return MarkO
	}
	return MarkX
}

// DetermineResult returns the winning mark, MarkTie when the board is full
// with no winner, or an empty string while the game continues. Lines are
// checked independently; legal play guarantees at most one mark can hold a
// full line.
func DetermineResult(board [9]string) string {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	for _, cell := range board {
		if cell == EmptyCell {
			return ""
		}
	}

	return MarkTie
}
