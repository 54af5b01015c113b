package security

import (
	"context"
	"testing"
	"time"

	"cp_tracker/internal/platform/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupJWT(t *testing.T) {
	t.Helper()
	config.AppConfig = &config.Config{JWTKey: []byte("test-secret"), JWTExp: time.Hour}
	InitJWT()
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.True(t, CheckPasswordHash("secret1", hash))
	assert.False(t, CheckPasswordHash("secret2", hash))

	other, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "hashes must be salted")
}

func TestIssueToken_RoundTrip(t *testing.T) {
	setupJWT(t)

	tokenString, session, err := IssueToken("u-1", "alice", true)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)
	assert.NotEmpty(t, session.ID)
	assert.True(t, session.ExpiresAt.After(time.Now()))

	token, err := TokenAuth.Decode(tokenString)
	require.NoError(t, err)
	claims, err := token.AsMap(context.Background())
	require.NoError(t, err)

	decoded, err := SessionFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, session.ID, decoded.ID)
	assert.Equal(t, "u-1", decoded.UserID)
	assert.Equal(t, "alice", decoded.Username)
	assert.True(t, decoded.IsAdmin)
	assert.Equal(t, session.ExpiresAt.Unix(), decoded.ExpiresAt.Unix())
}

func TestSessionFromClaims_Missing(t *testing.T) {
	_, err := SessionFromClaims(jwt.MapClaims{"role": "user", "jti": "x"})
	assert.Error(t, err)

	_, err = SessionFromClaims(jwt.MapClaims{"user_id": "u", "jti": "x"})
	assert.Error(t, err)

	_, err = SessionFromClaims(jwt.MapClaims{"user_id": "u", "role": "user"})
	assert.Error(t, err)
}

func TestSessionFromClaims_NumericExpiry(t *testing.T) {
	s, err := SessionFromClaims(jwt.MapClaims{
		"user_id": "u", "role": "user", "jti": "t", "exp": float64(1700000000),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), s.ExpiresAt.Unix())
	assert.False(t, s.IsAdmin)
}
