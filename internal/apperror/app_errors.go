package apperror

import "errors"

var (
	ErrInvalidInput       = errors.New("cell index is out of range")
	ErrGameAlreadyStarted = errors.New("game is already started")
	ErrSessionRequired    = errors.New("session id is required")
)
