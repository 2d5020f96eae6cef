package auth

import (
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// OverlayClaims represents the claims in an overlay access token
type OverlayClaims struct {
	ClientID string `json:"client_id"`
	Role     string `json:"role"` // always "overlay"
	jwt.RegisteredClaims
}

// secret returns the overlay signing secret. An empty secret means overlay
// auth is disabled and the websocket endpoint is open.
func secret() []byte {
	return []byte(os.Getenv("OVERLAY_SECRET"))
}

// Enabled reports whether overlay token auth is configured
func Enabled() bool {
	return len(secret()) > 0
}

// GenerateOverlayToken generates a JWT token for an overlay connection
func GenerateOverlayToken(clientID string) (string, error) {
	claims := &OverlayClaims{
		ClientID: clientID,
		Role:     "overlay",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret())
}

// ValidateToken validates a JWT token and returns the claims
func ValidateToken(tokenString string) (*OverlayClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &OverlayClaims{}, func(token *jwt.Token) (interface{}, error) {
		return secret(), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*OverlayClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrInvalidKey
}
