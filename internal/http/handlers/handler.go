package handlers

import (
	"context"
	"time"

	"shell_game/internal/domain"
	"shell_game/internal/http/middleware"
	"shell_game/internal/repository"
	"shell_game/internal/service"

	"github.com/gin-gonic/gin"
)

// RoundHistory reads stored rounds. nil when DATABASE_URL is not set.
type RoundHistory interface {
	GetByPlayer(ctx context.Context, playerID string, limit int) ([]*domain.RoundRecord, error)
	GetPlayerStats(ctx context.Context, playerID string, since time.Time) (*repository.PlayerStats, error)
}

type Handler struct {
	Shell  *service.ShellService
	Rounds RoundHistory
}

func NewHandler(shell *service.ShellService, rounds RoundHistory) *Handler {
	return &Handler{
		Shell:  shell,
		Rounds: rounds,
	}
}

// getPlayerID извлекает player_id из контекста Gin
func getPlayerID(c *gin.Context) (string, bool) {
	v, ok := c.Get(middleware.PlayerIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
