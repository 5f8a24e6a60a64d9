// Package bot picks moves for the built-in opponent. It is a greedy one-ply
// heuristic: it takes an immediate win, otherwise blocks an immediate loss,
// otherwise prefers center, then corners, then anything. It never looks
// further ahead, so a fork beats it.
package bot

import (
	"math/rand"

	"github.com/localplay/tictactoe-lobby/internal/apperror"
	"github.com/localplay/tictactoe-lobby/internal/entity"
)

var corners = []int{0, 2, 6, 8}

// ChooseMove returns the cell the opponent plays on board.
func ChooseMove(board [9]string, botMark string) (int, error) {
	available := make([]int, 0, len(board))
	for i, cell := range board {
		if cell == entity.EmptyCell {
			available = append(available, i)
		}
	}

	if len(available) == 0 {
		return 0, apperror.ErrNoAvailableMoves
	}

	if cell, ok := winningCell(board, available, botMark); ok {
		return cell, nil
	}

	if cell, ok := winningCell(board, available, entity.OpposingMark(botMark)); ok {
		return cell, nil
	}

	if board[4] == entity.EmptyCell {
		return 4, nil
	}

	freeCorners := make([]int, 0, len(corners))
	for _, corner := range corners {
		if board[corner] == entity.EmptyCell {
			freeCorners = append(freeCorners, corner)
		}
	}

	if len(freeCorners) > 0 {
		return freeCorners[rand.Intn(len(freeCorners))], nil //nolint: gosec // it's ok
	}

	return available[rand.Intn(len(available))], nil //nolint: gosec // it's ok
}

// winningCell finds a free cell that completes three-in-a-row for mark.
// The board is an array, so trial placements stay local.
func winningCell(board [9]string, available []int, mark string) (int, bool) {
	for _, cell := range available {
		board[cell] = mark
		if entity.DetermineResult(board) == mark {
			return cell, true
		}
		board[cell] = entity.EmptyCell
	}

	return 0, false
}
