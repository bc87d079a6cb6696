package auth

import (
	"errors"

	"github.com/dmitrijs2005/mandaditos/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// HashAccessKey returns the bcrypt hash stored in the server config.
func HashAccessKey(key []byte) (string, error) {
	h, err := bcrypt.GenerateFromPassword(key, bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckAccessKey compares key with hash. A mismatch is common.ErrorUnauthorized.
func CheckAccessKey(hash string, key []byte) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), key)
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return common.ErrorUnauthorized
	}
	return err
}
