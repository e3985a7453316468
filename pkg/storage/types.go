package storage

import "time"

// User is a registered principal. The password digest is never serialized.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Project groups tasks under an optional owning user. UserID is a weak
// reference: it is stored as-is and its target may not exist.
type Project struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	UserID      *string    `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Task is a unit of work with weak references to its user and project.
type Task struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	UserID      *string    `json:"user_id"`
	ProjectID   *string    `json:"project_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// UserUpdate carries the fields of a partial user update. Nil fields are
// left untouched.
type UserUpdate struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

// ProjectUpdate carries the fields of a partial project update.
type ProjectUpdate struct {
	Name        *string
	Description *string
	DueDate     *time.Time
	UserID      *string
}

// TaskUpdate carries the fields of a partial task update.
type TaskUpdate struct {
	Name        *string
	Description *string
	DueDate     *time.Time
	UserID      *string
	ProjectID   *string
}
