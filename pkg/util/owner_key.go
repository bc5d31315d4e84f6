package util

import (
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// HashOwnerKey hashes the plain owner maintenance key for storage in config
func HashOwnerKey(key string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(key), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// VerifyOwnerKey checks a presented owner key against the configured hash
func VerifyOwnerKey(hashedKey, key string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedKey), []byte(key))
	return err == nil
}
