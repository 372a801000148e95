package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/PicassoPreem-86/subletly-sub000/internal/models"
)

// Claims defines the structure of the session token claims. The claims carry
// the full caller identity so handlers never need a user lookup just to know
// who is calling.
type Claims struct {
	UserID      string             `json:"user_id"`
	AccountType models.AccountType `json:"account_type"`
	FirstName   string             `json:"first_name"`
	LastName    string             `json:"last_name"`
	jwt.RegisteredClaims
}

// GenerateSessionToken creates a new signed session token for a user.
func GenerateSessionToken(user *models.User, secretKey string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:      user.ID,
		AccountType: user.AccountType,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// ValidateSessionToken verifies a token string and returns the claims if
// valid.
func ValidateSessionToken(tokenString string, secretKey string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}

	return claims, nil
}
