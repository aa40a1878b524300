package service

import (
	"errors"

	"shell_game/internal/game"
)

// Error codes returned to clients
const (
	CodeInvalidPosition = "invalid_position"
	CodeNotReady        = "not_ready"
	CodeNoSession       = "no_session"
	CodeRandomSource    = "random_source_unavailable"
	CodeInternal        = "internal_error"
)

// ErrorCode maps a service or game error to its client code
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrInvalidPosition):
		return CodeInvalidPosition
	case errors.Is(err, game.ErrNotReady):
		return CodeNotReady
	case errors.Is(err, ErrNoSession):
		return CodeNoSession
	case errors.Is(err, game.ErrRandomSourceUnavailable):
		return CodeRandomSource
	default:
		return CodeInternal
	}
}
