package jwthelper

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var key = []byte("0123456789abcdef0123456789abcdef")

func TestGenerateAndParseToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	token, err := GenerateToken(key, userID, "scanner/1.0", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(key, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "scanner/1.0", claims.UserAgent)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestParseToken_Rejects(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	expired, err := GenerateToken(key, userID, "ua", -time.Minute)
	require.NoError(t, err)

	otherKey, err := GenerateToken([]byte("another-key-another-key-another-k"), userID, "ua", time.Hour)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: userID}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":      expired,
		"wrong key":    otherKey,
		"alg none":     none,
		"garbage":      "not.a.token",
		"empty string": "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(key, token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
