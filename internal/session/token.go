// JWT helpers for carrying the identity across the HTTP boundary, so a page
// reload keeps the session without the server tracking per-connection state.

package session

import (
	"fmt"
	"time"

	"bookstand/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long a minted token stays valid.
const TokenTTL = 24 * time.Hour

// MintToken signs an HS256 token embedding the identity.
func MintToken(secret []byte, user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"name":  user.Name,
		"exp":   time.Now().Add(TokenTTL).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken validates a token and returns the identity it carries.
func ParseToken(secret []byte, tokenString string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("token missing subject")
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	return &models.User{ID: models.ID(sub), Email: email, Name: name}, nil
}
