package apperror

import "errors"

var (
	ErrGameFinished = errors.New("game is already finished")
	ErrNotYourTurn  = errors.New("it's not your turn")
	ErrCellOccupied = errors.New("cell is already occupied")
	ErrInvalidCell  = errors.New("invalid cell index")

	ErrDuplicateName      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNoSession          = errors.New("no active session")

	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room already has a guest")
	ErrRoomNotReady  = errors.New("room has no guest yet")
	ErrEmptyRoomName = errors.New("room name is empty")

	ErrNoAvailableMoves = errors.New("no available moves")
)
