package utils

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a password using bcrypt. The returned hash embeds the
// salt and cost, so verification needs no side channel.
func HashPassword(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPasswordHash compares a password with a stored hash. A nil or empty
// hash short-circuits to false without invoking bcrypt, so an account with no
// password set fails verification the same way a wrong password does.
func CheckPasswordHash(password string, hash *string) bool {
	if hash == nil || *hash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(*hash), []byte(password))
	return err == nil
}
