// Package auth issues and verifies the signed session tokens handed out on login.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/usuarios/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the registered JWT claims plus the id of the account the
// session belongs to.
type Claims struct {
	jwt.RegisteredClaims
	AccountID string `json:"id"`
}

// GenerateToken signs an HS256 session token for accountID that expires
// after validityDuration.
func GenerateToken(accountID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		AccountID: accountID,
	})

	return token.SignedString(secretKey)
}

// GetAccountIDFromToken verifies tokenString and returns the account id it is
// bound to. Expired tokens yield common.ErrTokenExpired, every other failure
// common.ErrInvalidToken.
func GetAccountIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.AccountID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.AccountID, nil
}
