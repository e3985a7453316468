package api

import "time"

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type projectRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	UserID      *string    `json:"user_id"`
}

type updateProjectRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	UserID      *string    `json:"user_id"`
}

type taskRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	UserID      *string    `json:"user_id"`
	ProjectID   *string    `json:"project_id"`
}

type updateTaskRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	UserID      *string    `json:"user_id"`
	ProjectID   *string    `json:"project_id"`
}

// UserSummary is the partial view of a user embedded in a resolved task.
type UserSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ProjectSummary is the partial view of a project embedded in a resolved task.
type ProjectSummary struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

// TaskDetail is the resolved view returned by task reads by ID: the weak
// references are expanded into embedded summaries. A dangling reference
// resolves to null, never an error.
type TaskDetail struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	DueDate     *time.Time      `json:"due_date"`
	User        *UserSummary    `json:"user"`
	Project     *ProjectSummary `json:"project"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
