package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/secureapp/internal/common"
	"github.com/dmitrijs2005/secureapp/internal/server/migrations"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const pgUniqueViolation = "23505"

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// OpenPostgres opens a pgx-backed connection and applies the embedded goose
// migrations before returning.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration dialect error: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return db, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *User) (*User, error) {

	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, user.Email).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	if exists {
		return nil, common.ErrConflict
	}

	query :=
		`INSERT INTO users (first_name, last_name, email, password_hash, totp_secret, totp_confirmed)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at
		 `

	stored := *user
	err = r.db.QueryRowContext(ctx, query,
		user.FirstName, user.LastName, user.Email, user.PasswordHash,
		user.Enrollment.Secret, user.Enrollment.Confirmed,
	).Scan(&stored.ID, &stored.CreatedAt)

	if err != nil {
		// the unique index still catches a concurrent insert that slipped
		// past the existence check
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return &stored, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getBy(ctx, `email = $1`, email)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getBy(ctx, `id = $1`, id)
}

func (r *PostgresRepository) getBy(ctx context.Context, where string, arg any) (*User, error) {
	query :=
		`SELECT id, first_name, last_name, email, password_hash, totp_secret, totp_confirmed, created_at
		 FROM users
		 WHERE ` + where

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.PasswordHash,
		&user.Enrollment.Secret, &user.Enrollment.Confirmed, &user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, upd Update) error {

	set := make([]string, 0, 3)
	args := make([]any, 0, 4)

	if upd.Enrollment != nil {
		args = append(args, upd.Enrollment.Secret)
		set = append(set, fmt.Sprintf("totp_secret = $%d", len(args)))
		args = append(args, upd.Enrollment.Confirmed)
		set = append(set, fmt.Sprintf("totp_confirmed = $%d", len(args)))
	}
	if upd.PasswordHash != nil {
		args = append(args, *upd.PasswordHash)
		set = append(set, fmt.Sprintf("password_hash = $%d", len(args)))
	}

	if len(set) == 0 {
		// nothing to merge; still report unknown ids
		_, err := r.GetByID(ctx, id)
		return err
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d",
		strings.Join(set, ", "), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	return nil
}
