package handlers

import (
	"net/http"

	"shell_game/internal/logger"
	"shell_game/internal/service"

	"github.com/gin-gonic/gin"
)

// Session issues an anonymous player id and its token
func (h *Handler) Session(c *gin.Context) {
	playerID := service.NewPlayerID()

	token, err := service.GenerateJWT(playerID)
	if err != nil {
		logger.WithContext(c.Request.Context()).Error("jwt sign failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"player_id": playerID,
		"token":     token,
	})
}
