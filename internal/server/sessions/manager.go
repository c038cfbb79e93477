// Package sessions owns browser-session state for the login flow. A session
// moves through an explicit state machine: no challenge → password verified
// (partial auth) → authenticated, and is destroyed on logout or expiry.
package sessions

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/secureapp/internal/common"
)

// state is a closed sum over the three live session states. Destroyed
// sessions are simply absent from the manager, so a session can never carry
// contradictory flags such as a stale challenge next to an authenticated
// user.
type state interface{ isState() }

type noChallenge struct{}

// passwordVerified stages the user pending second-factor verification. It
// grants no access to protected resources.
type passwordVerified struct{ userID string }

type authenticated struct{ userID string }

func (noChallenge) isState()      {}
func (passwordVerified) isState() {}
func (authenticated) isState()    {}

type session struct {
	st        state
	expiresAt time.Time
}

// Manager creates, mutates and destroys sessions. Sessions have a fixed
// absolute lifetime with no sliding renewal; expiry is checked lazily on
// every access, so an expired session behaves as destroyed without any
// background sweep.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session
	lifetime time.Duration
	now      func() time.Time
}

func NewManager(lifetime time.Duration) *Manager {
	return NewManagerWithClock(lifetime, time.Now)
}

// NewManagerWithClock is NewManager with an injectable clock, for tests.
func NewManagerWithClock(lifetime time.Duration, now func() time.Time) *Manager {
	return &Manager{
		sessions: make(map[string]*session),
		lifetime: lifetime,
		now:      now,
	}
}

// sessionIDBytes is the entropy of a session identifier (256 bits).
const sessionIDBytes = 32

// Create starts an empty session and returns its identifier and absolute
// expiry. The identifier is an unguessable opaque token.
func (m *Manager) Create() (string, time.Time, error) {
	id, err := common.MakeRandHexString(sessionIDBytes)
	if err != nil {
		return "", time.Time{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	expiresAt := m.now().Add(m.lifetime)
	m.sessions[id] = &session{st: noChallenge{}, expiresAt: expiresAt}
	return id, expiresAt, nil
}

// live returns the session if it exists and has not expired. An expired
// session is dropped on first access. Callers must hold the lock.
func (m *Manager) live(id string) (*session, bool) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	if !m.now().Before(s.expiresAt) {
		delete(m.sessions, id)
		return nil, false
	}
	return s, true
}

// Exists reports whether the session is live (present and unexpired).
func (m *Manager) Exists(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.live(id)
	return ok
}

// StageChallenge moves the session to password-verified for the given user,
// replacing any previous state. Returns common.ErrNotFound when the session
// is missing or expired.
func (m *Manager) StageChallenge(id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.live(id)
	if !ok {
		return common.ErrNotFound
	}
	s.st = passwordVerified{userID: userID}
	return nil
}

// ChallengeUser returns the user staged by a successful password check, or
// false when the session is not in the password-verified state.
func (m *Manager) ChallengeUser(id string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.live(id)
	if !ok {
		return "", false
	}
	pv, ok := s.st.(passwordVerified)
	if !ok {
		return "", false
	}
	return pv.userID, true
}

// Authenticate promotes a password-verified session to authenticated in a
// single state swap: the challenge is cleared and the user reference set
// together, with no intermediate state observable. Returns common.ErrAuth
// when the session is not password-verified.
func (m *Manager) Authenticate(id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.live(id)
	if !ok {
		return "", common.ErrAuth
	}
	pv, ok := s.st.(passwordVerified)
	if !ok {
		return "", common.ErrAuth
	}
	s.st = authenticated{userID: pv.userID}
	return pv.userID, nil
}

// AuthenticatedUser returns the fully authenticated user, or false in any
// other state.
func (m *Manager) AuthenticatedUser(id string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.live(id)
	if !ok {
		return "", false
	}
	a, ok := s.st.(authenticated)
	if !ok {
		return "", false
	}
	return a.userID, true
}

// IsAuthenticated reports whether the session is fully authenticated and
// unexpired.
func (m *Manager) IsAuthenticated(id string) bool {
	_, ok := m.AuthenticatedUser(id)
	return ok
}

// Destroy removes the session. Destroying an unknown or already destroyed
// session is a no-op.
func (m *Manager) Destroy(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
}
