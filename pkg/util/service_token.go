package util

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// ServiceTokenClaims identifies a gateway shard calling the engine
type ServiceTokenClaims struct {
	ShardID string `json:"shard_id"`
	jwt.RegisteredClaims
}

// GenerateServiceToken issues a signed token for a gateway shard
func GenerateServiceToken(shardID, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := ServiceTokenClaims{
		ShardID: shardID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   shardID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateServiceToken parses and verifies a shard token
func ValidateServiceToken(tokenString, secret string) (*ServiceTokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ServiceTokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*ServiceTokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
