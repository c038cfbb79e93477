package users

import (
	"context"
)

// Update is a partial-field update applied by Repository.Update. Nil fields
// are left untouched. Implementations apply the whole update atomically per
// record, so concurrent updates never interleave partial merges.
type Update struct {
	Enrollment   *Enrollment
	PasswordHash *string
}

// Repository persists user records. Lookups return common.ErrNotFound when
// no record matches; Create returns common.ErrConflict when the email is
// already taken. There is no delete: records live for the lifetime of the
// store.
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, id string, upd Update) error
}
