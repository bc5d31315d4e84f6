package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateServiceToken(t *testing.T) {
	secret := "test-secret"

	token, err := GenerateServiceToken("shard-0", secret, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ValidateServiceToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "shard-0", claims.ShardID)
	assert.Equal(t, "shard-0", claims.Subject)
}

func TestValidateServiceToken_WrongSecret(t *testing.T) {
	token, err := GenerateServiceToken("shard-0", "right-secret", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateServiceToken(token, "wrong-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestValidateServiceToken_Expired(t *testing.T) {
	token, err := GenerateServiceToken("shard-0", "test-secret", -time.Minute)
	require.NoError(t, err)

	claims, err := ValidateServiceToken(token, "test-secret")
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, claims)
}

func TestValidateServiceToken_Malformed(t *testing.T) {
	claims, err := ValidateServiceToken("not-a-token", "test-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}
