package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret-that-is-long-enough"

func TestIssueAndParseToken(t *testing.T) {
	raw, err := IssueToken("controller-1", testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(raw, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "controller-1", claims.Subject)
	assert.Equal(t, TokenIssuer, claims.Issuer)
}

func TestParseToken_Rejects(t *testing.T) {
	t.Run("wrong secret", func(t *testing.T) {
		raw, err := IssueToken("u", testSecret, time.Hour)
		require.NoError(t, err)
		_, err = ParseToken(raw, "another-secret")
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		raw, err := IssueToken("u", testSecret, -time.Minute)
		require.NoError(t, err)
		_, err = ParseToken(raw, testSecret)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("other algorithm", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "u"}).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = ParseToken(raw, testSecret)
		assert.Error(t, err)
	})

	t.Run("no subject", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Issuer: TokenIssuer}).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = ParseToken(raw, testSecret)
		assert.ErrorIs(t, err, ErrTokenSubjectMissing)
	})

	t.Run("empty subject on issue", func(t *testing.T) {
		_, err := IssueToken("", testSecret, time.Hour)
		assert.ErrorIs(t, err, ErrTokenSubjectMissing)
	})
}
