// Package accounts implements the authentication flows: registration with
// two-factor enrollment, the two-step login, and the gate protecting the
// dashboard.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/secureapp/internal/common"
	"github.com/dmitrijs2005/secureapp/internal/server/password"
	"github.com/dmitrijs2005/secureapp/internal/server/sessions"
	"github.com/dmitrijs2005/secureapp/internal/server/totp"
	"github.com/dmitrijs2005/secureapp/internal/server/users"
)

// Registration is the result of a successful registration: the stored
// record plus the enrollment material the user scans into an authenticator
// app.
type Registration struct {
	User            *users.User
	ProvisioningURI string
	QRPNG           []byte
}

type Service struct {
	repo     users.Repository
	hasher   *password.Hasher
	totp     *totp.Engine
	sessions *sessions.Manager
	now      func() time.Time
}

func NewService(repo users.Repository, hasher *password.Hasher, engine *totp.Engine, sm *sessions.Manager) *Service {
	return &Service{
		repo:     repo,
		hasher:   hasher,
		totp:     engine,
		sessions: sm,
		now:      time.Now,
	}
}

// Register creates a user record with a pending two-factor secret. The
// record is not enrolled until ConfirmEnrollment succeeds. Last name is
// optional; first name, email and password are required.
func (s *Service) Register(ctx context.Context, firstName, lastName, email, plaintext string) (*Registration, error) {

	if firstName == "" || email == "" || plaintext == "" {
		return nil, common.ErrValidation
	}

	enrollment, err := s.totp.GenerateSecret(email)
	if err != nil {
		return nil, fmt.Errorf("generating totp secret: %w", err)
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &users.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hash,
		Enrollment:   users.NewPendingEnrollment(enrollment.Secret),
	}

	user, err = s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return &Registration{
		User:            user,
		ProvisioningURI: enrollment.ProvisioningURI,
		QRPNG:           enrollment.QRPNG,
	}, nil
}

// ConfirmEnrollment verifies the submitted code against the user's pending
// secret and, on success, promotes the record to enrolled in a single
// update: pending secret cleared, confirmed secret set. On a wrong code the
// record is unchanged and enrollment can be retried.
func (s *Service) ConfirmEnrollment(ctx context.Context, userID, code string) error {

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("error fetching user: %w", err)
	}

	secret, ok := user.Enrollment.PendingSecret()
	if !ok {
		// no pending secret: either never issued or already confirmed
		return common.ErrInvalidCode
	}

	if !s.totp.Verify(secret, code, s.now()) {
		return common.ErrInvalidCode
	}

	confirmed := user.Enrollment.Confirm()
	if err := s.repo.Update(ctx, userID, users.Update{Enrollment: &confirmed}); err != nil {
		return fmt.Errorf("error updating user: %w", err)
	}

	return nil
}

// BeginLogin runs the password step. User absent, user not enrolled and
// password mismatch all collapse into common.ErrAuth so the caller cannot
// tell which check failed. Only after every check passes is the partial-auth
// challenge staged on the session; a wrong password stages nothing.
func (s *Service) BeginLogin(ctx context.Context, sessionID, email, plaintext string) error {

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrAuth
		}
		return fmt.Errorf("error fetching user: %w", err)
	}

	if _, enrolled := user.Enrollment.ConfirmedSecret(); !enrolled {
		return common.ErrAuth
	}

	if !s.hasher.Verify(plaintext, user.PasswordHash) {
		return common.ErrAuth
	}

	if err := s.sessions.StageChallenge(sessionID, user.ID); err != nil {
		return common.ErrAuth
	}

	return nil
}

// CompleteLogin runs the second-factor step. It requires a prior successful
// BeginLogin on the same session (common.ErrAuth otherwise), verifies the
// code against the confirmed secret (common.ErrInvalidCode on mismatch, with
// the challenge left in place so the user can retry without re-entering the
// password) and promotes the session to authenticated.
func (s *Service) CompleteLogin(ctx context.Context, sessionID, code string) error {

	userID, staged := s.sessions.ChallengeUser(sessionID)
	if !staged {
		return common.ErrAuth
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("error fetching user: %w", err)
	}

	secret, ok := user.Enrollment.ConfirmedSecret()
	if !ok {
		return common.ErrAuth
	}

	if !s.totp.Verify(secret, code, s.now()) {
		return common.ErrInvalidCode
	}

	if _, err := s.sessions.Authenticate(sessionID); err != nil {
		return common.ErrAuth
	}

	return nil
}

// Logout destroys the session; idempotent.
func (s *Service) Logout(ctx context.Context, sessionID string) {
	s.sessions.Destroy(sessionID)
}

// IsAuthenticated reports whether the session is fully authenticated and
// unexpired.
func (s *Service) IsAuthenticated(sessionID string) bool {
	return s.sessions.IsAuthenticated(sessionID)
}

// Admit is the dashboard gate: it returns the user record for a fully
// authenticated session and common.ErrUnauthorized in every other case.
// Read-only.
func (s *Service) Admit(ctx context.Context, sessionID string) (*users.User, error) {

	userID, ok := s.sessions.AuthenticatedUser(sessionID)
	if !ok {
		return nil, common.ErrUnauthorized
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("error fetching user: %w", err)
	}

	return user, nil
}
