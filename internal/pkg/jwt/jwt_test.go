package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timeguard/timeguard-api/internal/pkg/session"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewJWTService("test-secret-key-with-enough-length", "15m", "168h", false)
	require.NoError(t, err)
	return svc
}

func TestNewJWTService_InvalidDuration(t *testing.T) {
	_, err := NewJWTService("secret", "soon", "168h", false)
	assert.Error(t, err)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestService(t)
	sess := session.Session{UserID: "u-1", Email: "a@example.com", Role: session.RoleManager}

	token, exp, err := svc.GenerateAccessToken(sess)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Positive(t, exp)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)

	got, err := SessionFromClaims(decoded.PrivateClaims())
	require.NoError(t, err)
	assert.Equal(t, sess, got)
	assert.Equal(t, TypeAccess, decoded.PrivateClaims()["type"])
}

func TestRefreshToken(t *testing.T) {
	svc := newTestService(t)

	token, _, err := svc.GenerateRefreshToken("u-1")
	require.NoError(t, err)

	userID, err := svc.ParseRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)

	access, _, err := svc.GenerateAccessToken(session.Session{UserID: "u-1", Role: session.RoleEmployee})
	require.NoError(t, err)
	_, err = svc.ParseRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestRefreshToken_UniquePerIssue(t *testing.T) {
	svc := newTestService(t)

	first, _, err := svc.GenerateRefreshToken("u-1")
	require.NoError(t, err)
	second, _, err := svc.GenerateRefreshToken("u-1")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	for _, token := range []string{first, second} {
		userID, err := svc.ParseRefreshToken(token)
		require.NoError(t, err)
		assert.Equal(t, "u-1", userID)
	}

	decoded, err := svc.JWTAuth().Decode(first)
	require.NoError(t, err)
	assert.NotEmpty(t, decoded.JwtID())
}

func TestSSEToken(t *testing.T) {
	svc := newTestService(t)
	sess := session.Session{UserID: "u-2", Role: session.RoleAdmin}

	token, expiresIn, err := svc.GenerateSSEToken(sess)
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	got, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, got.UserID)
	assert.Equal(t, session.RoleAdmin, got.Role)

	_, err = svc.ValidateSSEToken("not-a-token")
	assert.Error(t, err)
}

func TestSessionFromClaims_RejectsUnknownRole(t *testing.T) {
	_, err := SessionFromClaims(map[string]interface{}{"user_id": "u", "role": "owner"})
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestRevokeToken(t *testing.T) {
	svc := newTestService(t)

	assert.False(t, svc.IsTokenRevoked("abc"))
	svc.RevokeToken("abc")
	assert.True(t, svc.IsTokenRevoked("abc"))
}
