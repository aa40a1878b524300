package handlers

import (
	"errors"
	"net/http"

	"shell_game/internal/logger"
	"shell_game/internal/service"

	"github.com/gin-gonic/gin"
)

// ShellGuessRequest represents the guess request. Position is the cup's
// left-to-right slot, 1..3.
type ShellGuessRequest struct {
	Position *int `json:"position" binding:"required"`
}

// ShellStart starts a new round, replacing any previous one
func (h *Handler) ShellStart(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	view, err := h.Shell.StartRound(c.Request.Context(), playerID)
	if err != nil {
		writeShellError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ShellState returns the current round, or active=false without one
func (h *Handler) ShellState(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	view, err := h.Shell.State(playerID)
	if errors.Is(err, service.ErrNoSession) {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}
	if err != nil {
		writeShellError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": true, "round": view})
}

// ShellGuess reveals the chosen cup
func (h *Handler) ShellGuess(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	var req ShellGuessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	view, err := h.Shell.Guess(c.Request.Context(), playerID, *req.Position)
	if err != nil {
		writeShellError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ShellReset discards the round and starts the intro again
func (h *Handler) ShellReset(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	view, err := h.Shell.Reset(c.Request.Context(), playerID)
	if err != nil {
		writeShellError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ShellReshuffle shuffles again before the guess
func (h *Handler) ShellReshuffle(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	view, err := h.Shell.Reshuffle(c.Request.Context(), playerID)
	if err != nil {
		writeShellError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ShellInfo returns the round script
func (h *Handler) ShellInfo(c *gin.Context) {
	info := h.Shell.Script().ToInfo()
	info["guess_by"] = "slot"
	c.JSON(http.StatusOK, info)
}

func writeShellError(c *gin.Context, err error) {
	code := service.ErrorCode(err)

	status := http.StatusInternalServerError
	switch code {
	case service.CodeInvalidPosition:
		status = http.StatusBadRequest
	case service.CodeNotReady:
		status = http.StatusConflict
	case service.CodeNoSession:
		status = http.StatusNotFound
	case service.CodeRandomSource:
		status = http.StatusServiceUnavailable
	default:
		logger.WithContext(c.Request.Context()).Error("shell request failed", "error", err)
		c.JSON(status, gin.H{"error": code})
		return
	}

	c.JSON(status, gin.H{"error": code, "message": err.Error()})
}
