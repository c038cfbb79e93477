package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken("sess-1", secret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sessionID, err := GetSessionIDFromToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", sessionID)
}

func TestGetSessionIDFromToken_WrongKey(t *testing.T) {
	token, err := GenerateToken("sess-1", []byte("right"), time.Hour)
	require.NoError(t, err)

	_, err = GetSessionIDFromToken(token, []byte("wrong"))
	assert.Error(t, err)
}

func TestGetSessionIDFromToken_Expired(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken("sess-1", secret, -time.Minute)
	require.NoError(t, err)

	_, err = GetSessionIDFromToken(token, secret)
	assert.Error(t, err)
}

func TestGetSessionIDFromToken_Garbage(t *testing.T) {
	_, err := GetSessionIDFromToken("not.a.token", []byte("k"))
	assert.Error(t, err)
}
