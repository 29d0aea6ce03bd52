// Package auth implements the server's challenge–response login: a
// single-use nonce signed by the wallet, exchanged for a short-lived HS256
// session token carrying the principal address.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sentinelchain/filevault/internal/common"
)

// Claims carries the authenticated principal address alongside the standard
// registered claims.
type Claims struct {
	jwt.RegisteredClaims
	Address string
}

// GenerateToken issues an HS256 session token for address.
func GenerateToken(address string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		Address: address,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// AddressFromToken validates tokenString and returns the principal address.
func AddressFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return "", common.ErrInvalidToken
	}
	if !token.Valid || claims.Address == "" {
		return "", common.ErrInvalidToken
	}
	return claims.Address, nil
}
