package handlers

import (
	"net/http"
	"strconv"
	"time"

	"shell_game/internal/domain"
	"shell_game/internal/logger"

	"github.com/gin-gonic/gin"
)

// MyRounds returns the player's stored rounds and monthly stats
func (h *Handler) MyRounds(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	if h.Rounds == nil {
		c.JSON(http.StatusOK, gin.H{"rounds": []*domain.RoundRecord{}, "stats": nil, "history": "disabled"})
		return
	}

	limit := 50
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}

	ctx := c.Request.Context()
	rounds, err := h.Rounds.GetByPlayer(ctx, playerID, limit)
	if err != nil {
		logger.WithContext(ctx).Error("get rounds failed", "player_id", playerID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get rounds"})
		return
	}
	if rounds == nil {
		rounds = []*domain.RoundRecord{}
	}

	since := time.Now().AddDate(0, -1, 0)
	stats, err := h.Rounds.GetPlayerStats(ctx, playerID, since)
	if err != nil {
		logger.WithContext(ctx).Error("get round stats failed", "player_id", playerID, "error", err)
		stats = nil
	}

	c.JSON(http.StatusOK, gin.H{"rounds": rounds, "stats": stats})
}
