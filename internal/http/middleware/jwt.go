package middleware

import (
	"net/http"
	"strings"

	"shell_game/internal/service"

	"github.com/gin-gonic/gin"
)

// PlayerIDKey is the gin context key holding the authenticated player id
const PlayerIDKey = "player_id"

// JWT requires "Authorization: Bearer <token>" and stores the player id
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		playerID, err := service.ParseJWT(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(PlayerIDKey, playerID)
		c.Next()
	}
}
