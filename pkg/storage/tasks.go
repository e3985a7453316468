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

const taskColumns = "id, name, description, due_date, user_id, project_id, created_at, updated_at"

// TaskStore persists tasks. Both user_id and project_id are weak
// references stored without existence validation.
type TaskStore struct {
	db  *sql.DB
	rec Recorder
}

// NewTaskStore creates a TaskStore over the given database.
func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db, rec: nopRecorder{}}
}

// WithRecorder attaches an operation recorder and returns the store.
func (s *TaskStore) WithRecorder(rec Recorder) *TaskStore {
	s.rec = rec
	return s
}

// Create persists a new task, assigning its ID and timestamps.
func (s *TaskStore) Create(ctx context.Context, task *Task) (err error) {
	defer observe(s.rec, "create", "task", time.Now(), &err)

	now := time.Now().UTC()
	task.ID = uuid.NewString()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, name, description, due_date, user_id, project_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, task.ID, task.Name, task.Description, task.DueDate, task.UserID, task.ProjectID, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// List returns all tasks in insertion order.
func (s *TaskStore) List(ctx context.Context) (tasks []*Task, err error) {
	defer observe(s.rec, "list", "task", time.Now(), &err)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM tasks ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks = make([]*Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			err = fmt.Errorf("failed to scan task: %w", scanErr)
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// GetByID returns the task with the given ID, or ErrNotFound.
func (s *TaskStore) GetByID(ctx context.Context, id string) (task *Task, err error) {
	defer observe(s.rec, "get", "task", time.Now(), &err)
	return s.getOne(ctx, id)
}

func (s *TaskStore) getOne(ctx context.Context, id string) (*Task, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = $1", id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// Update merges the provided fields into the existing record and returns
// the post-update task.
func (s *TaskStore) Update(ctx context.Context, id string, upd TaskUpdate) (task *Task, err error) {
	defer observe(s.rec, "update", "task", time.Now(), &err)

	sets := []string{"updated_at = $1"}
	args := []interface{}{time.Now().UTC()}
	n := 2
	if upd.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", n))
		args = append(args, *upd.Name)
		n++
	}
	if upd.Description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", n))
		args = append(args, *upd.Description)
		n++
	}
	if upd.DueDate != nil {
		sets = append(sets, fmt.Sprintf("due_date = $%d", n))
		args = append(args, *upd.DueDate)
		n++
	}
	if upd.UserID != nil {
		sets = append(sets, fmt.Sprintf("user_id = $%d", n))
		args = append(args, *upd.UserID)
		n++
	}
	if upd.ProjectID != nil {
		sets = append(sets, fmt.Sprintf("project_id = $%d", n))
		args = append(args, *upd.ProjectID)
		n++
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = $%d", strings.Join(sets, ", "), n)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return s.getOne(ctx, id)
}

// Delete removes the task with the given ID, or returns ErrNotFound.
func (s *TaskStore) Delete(ctx context.Context, id string) (err error) {
	defer observe(s.rec, "delete", "task", time.Now(), &err)

	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTask(row scanner) (*Task, error) {
	task := &Task{}
	var dueDate sql.NullTime
	var userID, projectID sql.NullString
	if err := row.Scan(&task.ID, &task.Name, &task.Description, &dueDate, &userID, &projectID, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}
	task.DueDate = nullTime(dueDate)
	task.UserID = nullString(userID)
	task.ProjectID = nullString(projectID)
	return task, nil
}
