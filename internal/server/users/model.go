// Package users owns user-record data: the model, the repository contract
// and its JSON-file and Postgres implementations.
package users

import "time"

// Enrollment is the two-factor enrollment state of a user. It carries a
// single secret plus a confirmed flag, so the record can never hold both a
// pending and a confirmed secret at once: the secret is pending until
// Confirm, confirmed after.
type Enrollment struct {
	Secret    string `json:"secret"`
	Confirmed bool   `json:"confirmed"`
}

// NewPendingEnrollment returns the enrollment state issued at registration:
// secret generated, confirmation outstanding.
func NewPendingEnrollment(secret string) Enrollment {
	return Enrollment{Secret: secret}
}

// PendingSecret returns the secret awaiting confirmation. ok is false once
// the enrollment has been confirmed (or no secret was ever issued).
func (e Enrollment) PendingSecret() (string, bool) {
	if e.Confirmed || e.Secret == "" {
		return "", false
	}
	return e.Secret, true
}

// ConfirmedSecret returns the confirmed shared secret. ok is false until
// enrollment has been confirmed.
func (e Enrollment) ConfirmedSecret() (string, bool) {
	if !e.Confirmed || e.Secret == "" {
		return "", false
	}
	return e.Secret, true
}

// Confirm promotes a pending secret to confirmed. The record is mutated
// exactly once on this path; confirming an already confirmed enrollment is
// a no-op.
func (e Enrollment) Confirm() Enrollment {
	e.Confirmed = true
	return e
}

// User is a stored user record. Email is a unique, case-sensitive key.
type User struct {
	ID           string     `json:"id"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"passwordHash"`
	Enrollment   Enrollment `json:"enrollment"`
	CreatedAt    time.Time  `json:"createdAt"`
}
