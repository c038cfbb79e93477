package users

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/secureapp/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func userColumns() []string {
	return []string{"id", "first_name", "last_name", "email", "password_hash", "totp_secret", "totp_confirmed", "created_at"}
}

func TestPostgresRepository_Create_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	r := NewPostgresRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`)).
		WithArgs("ann@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	user := testUser("ann@x.com")

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs(user.FirstName, user.LastName, user.Email, user.PasswordHash, user.Enrollment.Secret, user.Enrollment.Confirmed).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
			AddRow("u1", time.Now()))

	created, err := r.Create(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "u1", created.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Create_Conflict(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	r := NewPostgresRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`)).
		WithArgs("ann@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := r.Create(context.Background(), testUser("ann@x.com"))
	assert.ErrorIs(t, err, common.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetByEmail_NotFound(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	r := NewPostgresRepository(db)

	mock.ExpectQuery("SELECT id, first_name").
		WithArgs("nobody@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := r.GetByEmail(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPostgresRepository_GetByID_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	r := NewPostgresRepository(db)

	mock.ExpectQuery("SELECT id, first_name").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow("u1", "Ann", "Lee", "ann@x.com", "hash", "JBSWY3DPEHPK3PXP", true, time.Now()))

	got, err := r.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", got.Email)

	secret, ok := got.Enrollment.ConfirmedSecret()
	require.True(t, ok)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", secret)
}

func TestPostgresRepository_Update_Enrollment(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	r := NewPostgresRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET totp_secret = $1, totp_confirmed = $2 WHERE id = $3`)).
		WithArgs("JBSWY3DPEHPK3PXP", true, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	enr := Enrollment{Secret: "JBSWY3DPEHPK3PXP", Confirmed: true}
	err := r.Update(context.Background(), "u1", Update{Enrollment: &enr})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Update_UnknownID(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	r := NewPostgresRepository(db)

	mock.ExpectExec("UPDATE users SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	enr := Enrollment{Secret: "s", Confirmed: true}
	err := r.Update(context.Background(), "missing", Update{Enrollment: &enr})
	assert.ErrorIs(t, err, common.ErrNotFound)
}
