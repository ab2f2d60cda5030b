package service

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims defines the custom claims for short-lived websocket tokens.
type Claims struct {
	UserID uuid.UUID
	Role   string
	jwt.RegisteredClaims
}

// TokenService defines the interface for generating and validating JWTs.
// Sessions themselves are opaque tokens; JWTs are only minted for the
// websocket handshake where a self-contained credential is required.
type TokenService interface {
	// GenerateWebSocketToken creates a short-lived token for a user.
	GenerateWebSocketToken(userID uuid.UUID, role string) (string, error)

	// ValidateToken checks the validity of a token string.
	ValidateToken(tokenString string) (*Claims, error)
}
