package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenTTL = 24 * time.Hour

var jwtSecret []byte

// InitJWT sets the HS256 signing secret
func InitJWT(secret string) error {
	if secret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	jwtSecret = []byte(secret)
	return nil
}

// NewPlayerID returns a fresh anonymous player id
func NewPlayerID() string {
	return uuid.NewString()
}

func GenerateJWT(playerID string) (string, error) {
	if len(jwtSecret) == 0 {
		return "", errors.New("jwt not initialized")
	}

	now := time.Now().Unix()
	claims := jwt.MapClaims{
		"player_id": playerID,
		"exp":       time.Now().Add(tokenTTL).Unix(),
		"iat":       now,
		"nbf":       now,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func ParseJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})

	// jwt/v5 validates exp and nbf when present
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}

	playerID, ok := claims["player_id"].(string)
	if !ok || playerID == "" {
		return "", errors.New("player_id not found")
	}

	return playerID, nil
}
