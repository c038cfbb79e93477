package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/secureapp/internal/common"
	"github.com/google/uuid"
)

// fileLayout is the on-disk shape of the store: the user collection keyed by
// record identifier.
type fileLayout struct {
	Users map[string]*User `json:"users"`
}

// JSONFileRepository is a file-backed Repository. The whole collection is
// loaded at open and kept in memory; every mutation rewrites the file through
// a temp file + rename so a crash never leaves a half-written store. A
// single RWMutex serializes writers, which makes each read-modify-write
// atomic per record.
type JSONFileRepository struct {
	path  string
	mu    sync.RWMutex
	users map[string]*User
}

// NewJSONFileRepository opens the store at path, creating an empty one if
// the file does not exist yet.
func NewJSONFileRepository(path string) (*JSONFileRepository, error) {
	r := &JSONFileRepository{
		path:  path,
		users: make(map[string]*User),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return r, nil
		}
		return nil, fmt.Errorf("reading user store: %w", err)
	}

	var layout fileLayout
	if err := json.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("decoding user store: %w", err)
	}
	if layout.Users != nil {
		r.users = layout.Users
	}

	return r, nil
}

// persist writes the collection to disk. Callers must hold the write lock.
func (r *JSONFileRepository) persist() error {
	data, err := json.MarshalIndent(fileLayout{Users: r.users}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding user store: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".users-*.json")
	if err != nil {
		return fmt.Errorf("creating temp store file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing user store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp store file: %w", err)
	}

	if err := os.Rename(tmp.Name(), r.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing user store: %w", err)
	}

	return nil
}

func (r *JSONFileRepository) Create(ctx context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return nil, common.ErrConflict
		}
	}

	stored := *user
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}

	r.users[stored.ID] = &stored

	if err := r.persist(); err != nil {
		delete(r.users, stored.ID)
		return nil, err
	}

	result := stored
	return &result, nil
}

func (r *JSONFileRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			result := *u
			return &result, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *JSONFileRepository) GetByID(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	result := *u
	return &result, nil
}

func (r *JSONFileRepository) Update(ctx context.Context, id string, upd Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}

	prev := *u
	if upd.Enrollment != nil {
		u.Enrollment = *upd.Enrollment
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}

	if err := r.persist(); err != nil {
		*u = prev
		return err
	}

	return nil
}
