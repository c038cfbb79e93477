package sessions

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/secureapp/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCreate(t *testing.T, m *Manager) string {
	t.Helper()
	id, _, err := m.Create()
	require.NoError(t, err)
	return id
}

func TestManager_CreateIsEmptyAndLive(t *testing.T) {
	m := NewManager(24 * time.Hour)

	id, expiresAt, err := m.Create()
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.True(t, expiresAt.After(time.Now()))

	assert.True(t, m.Exists(id))
	assert.False(t, m.IsAuthenticated(id))

	_, staged := m.ChallengeUser(id)
	assert.False(t, staged)
}

func TestManager_FullLoginTransition(t *testing.T) {
	m := NewManager(24 * time.Hour)
	id := mustCreate(t, m)

	require.NoError(t, m.StageChallenge(id, "u1"))

	staged, ok := m.ChallengeUser(id)
	require.True(t, ok)
	assert.Equal(t, "u1", staged)

	// staging alone grants nothing
	assert.False(t, m.IsAuthenticated(id))

	userID, err := m.Authenticate(id)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	// the challenge is cleared in the same transition
	_, stillStaged := m.ChallengeUser(id)
	assert.False(t, stillStaged)

	authed, ok := m.AuthenticatedUser(id)
	require.True(t, ok)
	assert.Equal(t, "u1", authed)
	assert.True(t, m.IsAuthenticated(id))
}

func TestManager_AuthenticateWithoutChallenge(t *testing.T) {
	m := NewManager(24 * time.Hour)
	id := mustCreate(t, m)

	_, err := m.Authenticate(id)
	assert.ErrorIs(t, err, common.ErrAuth)

	_, err = m.Authenticate("no-such-session")
	assert.ErrorIs(t, err, common.ErrAuth)
}

func TestManager_StageChallengeUnknownSession(t *testing.T) {
	m := NewManager(24 * time.Hour)

	err := m.StageChallenge("no-such-session", "u1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestManager_DestroyIsIdempotent(t *testing.T) {
	m := NewManager(24 * time.Hour)
	id := mustCreate(t, m)

	require.NoError(t, m.StageChallenge(id, "u1"))
	_, err := m.Authenticate(id)
	require.NoError(t, err)

	m.Destroy(id)
	assert.False(t, m.Exists(id))
	assert.False(t, m.IsAuthenticated(id))

	m.Destroy(id)
	assert.False(t, m.Exists(id))
}

func TestManager_LazyExpiry(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewManagerWithClock(24*time.Hour, func() time.Time { return current })

	id := mustCreate(t, m)
	require.NoError(t, m.StageChallenge(id, "u1"))
	_, err := m.Authenticate(id)
	require.NoError(t, err)
	require.True(t, m.IsAuthenticated(id))

	// past expiry the session acts destroyed even though never explicitly
	// destroyed
	current = current.Add(24*time.Hour + time.Second)

	assert.False(t, m.IsAuthenticated(id))
	assert.False(t, m.Exists(id))

	_, ok := m.AuthenticatedUser(id)
	assert.False(t, ok)

	assert.ErrorIs(t, m.StageChallenge(id, "u1"), common.ErrNotFound)
}

func TestManager_ExpiryIsAbsoluteNotSliding(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewManagerWithClock(time.Hour, func() time.Time { return current })

	id, expiresAt, err := m.Create()
	require.NoError(t, err)
	assert.Equal(t, current.Add(time.Hour), expiresAt)

	// repeated access must not push the deadline out
	for i := 0; i < 5; i++ {
		current = current.Add(10 * time.Minute)
		m.Exists(id)
	}

	current = current.Add(10 * time.Minute) // past the original deadline
	assert.False(t, m.Exists(id))
}

func TestManager_ConcurrentSessionsAreIndependent(t *testing.T) {
	m := NewManager(24 * time.Hour)

	a := mustCreate(t, m)
	b := mustCreate(t, m)
	require.NotEqual(t, a, b)

	require.NoError(t, m.StageChallenge(a, "u1"))
	require.NoError(t, m.StageChallenge(b, "u1"))

	_, err := m.Authenticate(a)
	require.NoError(t, err)

	// b is still only staged
	assert.False(t, m.IsAuthenticated(b))
	staged, ok := m.ChallengeUser(b)
	require.True(t, ok)
	assert.Equal(t, "u1", staged)
}
