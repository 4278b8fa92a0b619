package utils

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Exit(m.Run())
}

func TestFormTokenRoundTrip(t *testing.T) {
	token, err := GenerateFormToken(time.Hour)
	require.NoError(t, err)
	assert.NoError(t, VerifyFormToken(token))
}

func TestFormTokenRejections(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.ErrorIs(t, VerifyFormToken(""), ErrBadFormToken)
	})

	t.Run("garbage", func(t *testing.T) {
		assert.ErrorIs(t, VerifyFormToken("not.a.jwt"), ErrBadFormToken)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := GenerateFormToken(-time.Minute)
		require.NoError(t, err)
		assert.ErrorIs(t, VerifyFormToken(token), ErrBadFormToken)
	})

	t.Run("session token is not a form token", func(t *testing.T) {
		session, err := GenerateToken(1, "admin", true, time.Hour)
		require.NoError(t, err)
		assert.ErrorIs(t, VerifyFormToken(session), ErrBadFormToken)
	})
}

func TestSessionTokenClaims(t *testing.T) {
	token, err := GenerateToken(42, "reviewer", false, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UserID)
	assert.Equal(t, "reviewer", claims.Username)
	assert.False(t, claims.IsAdmin)
}
