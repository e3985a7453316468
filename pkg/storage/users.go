package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const userColumns = "id, name, email, password_hash, created_at, updated_at"

// UserStore persists users and enforces email uniqueness at the
// repository boundary.
type UserStore struct {
	db  *sql.DB
	rec Recorder
}

// NewUserStore creates a UserStore over the given database.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db, rec: nopRecorder{}}
}

// WithRecorder attaches an operation recorder and returns the store.
func (s *UserStore) WithRecorder(rec Recorder) *UserStore {
	s.rec = rec
	return s
}

// Create persists a new user, assigning its ID and timestamps. Returns
// ErrDuplicateEmail when the email is already registered.
func (s *UserStore) Create(ctx context.Context, user *User) (err error) {
	defer observe(s.rec, "create", "user", time.Now(), &err)

	taken, err := s.emailTaken(ctx, user.Email, "")
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateEmail
	}

	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		// Unique index catches the race the pre-check cannot.
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// List returns all users in insertion order.
func (s *UserStore) List(ctx context.Context) (users []*User, err error) {
	defer observe(s.rec, "list", "user", time.Now(), &err)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users = make([]*User, 0)
	for rows.Next() {
		user := &User{}
		if err = rows.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetByID returns the user with the given ID, or ErrNotFound.
func (s *UserStore) GetByID(ctx context.Context, id string) (user *User, err error) {
	defer observe(s.rec, "get", "user", time.Now(), &err)
	return s.getOne(ctx, "id", id)
}

// GetByEmail returns the user with the given email, or ErrNotFound.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (user *User, err error) {
	defer observe(s.rec, "get_by_email", "user", time.Now(), &err)
	return s.getOne(ctx, "email", email)
}

func (s *UserStore) getOne(ctx context.Context, column, value string) (*User, error) {
	user := &User{}
	err := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+column+" = $1", value,
	).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Update merges the provided fields into the existing record and returns
// the post-update user. Unset fields are untouched.
func (s *UserStore) Update(ctx context.Context, id string, upd UserUpdate) (user *User, err error) {
	defer observe(s.rec, "update", "user", time.Now(), &err)

	if upd.Email != nil {
		taken, err := s.emailTaken(ctx, *upd.Email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrDuplicateEmail
		}
	}

	sets := []string{"updated_at = $1"}
	args := []interface{}{time.Now().UTC()}
	n := 2
	if upd.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", n))
		args = append(args, *upd.Name)
		n++
	}
	if upd.Email != nil {
		sets = append(sets, fmt.Sprintf("email = $%d", n))
		args = append(args, *upd.Email)
		n++
	}
	if upd.PasswordHash != nil {
		sets = append(sets, fmt.Sprintf("password_hash = $%d", n))
		args = append(args, *upd.PasswordHash)
		n++
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(sets, ", "), n)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return s.getOne(ctx, "id", id)
}

// Delete removes the user with the given ID, or returns ErrNotFound.
// Projects and tasks referencing the user are left dangling.
func (s *UserStore) Delete(ctx context.Context, id string) (err error) {
	defer observe(s.rec, "delete", "user", time.Now(), &err)

	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// emailTaken reports whether another user already holds the email.
// excludeID skips the user being updated.
func (s *UserStore) emailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND id <> $2)",
		email, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	return exists, nil
}
