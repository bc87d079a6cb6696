// Package auth issues and checks the tokens devices use after logging in
// with the shared access key.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/mandaditos/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the device name next to the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	Device string `json:"device"`
}

func GenerateToken(device string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Device: device,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetDeviceFromToken validates tokenString and returns its device.
// Expired tokens yield common.ErrTokenExpired, anything else that fails
// validation common.ErrInvalidToken.
func GetDeviceFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.Device, nil
}
