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

const projectColumns = "id, name, description, due_date, user_id, created_at, updated_at"

// ProjectStore persists projects. The user_id reference is stored without
// existence validation.
type ProjectStore struct {
	db  *sql.DB
	rec Recorder
}

// NewProjectStore creates a ProjectStore over the given database.
func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db, rec: nopRecorder{}}
}

// WithRecorder attaches an operation recorder and returns the store.
func (s *ProjectStore) WithRecorder(rec Recorder) *ProjectStore {
	s.rec = rec
	return s
}

// Create persists a new project, assigning its ID and timestamps.
func (s *ProjectStore) Create(ctx context.Context, project *Project) (err error) {
	defer observe(s.rec, "create", "project", time.Now(), &err)

	now := time.Now().UTC()
	project.ID = uuid.NewString()
	project.CreatedAt = now
	project.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, description, due_date, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, project.ID, project.Name, project.Description, project.DueDate, project.UserID, project.CreatedAt, project.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// List returns all projects in insertion order.
func (s *ProjectStore) List(ctx context.Context) (projects []*Project, err error) {
	defer observe(s.rec, "list", "project", time.Now(), &err)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+projectColumns+` FROM projects ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects = make([]*Project, 0)
	for rows.Next() {
		project, scanErr := scanProject(rows)
		if scanErr != nil {
			err = fmt.Errorf("failed to scan project: %w", scanErr)
			return nil, err
		}
		projects = append(projects, project)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// GetByID returns the project with the given ID, or ErrNotFound.
func (s *ProjectStore) GetByID(ctx context.Context, id string) (project *Project, err error) {
	defer observe(s.rec, "get", "project", time.Now(), &err)
	return s.getOne(ctx, id)
}

func (s *ProjectStore) getOne(ctx context.Context, id string) (*Project, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE id = $1", id)
	project, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// Update merges the provided fields into the existing record and returns
// the post-update project.
func (s *ProjectStore) Update(ctx context.Context, id string, upd ProjectUpdate) (project *Project, err error) {
	defer observe(s.rec, "update", "project", time.Now(), &err)

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
	args = append(args, id)

	query := fmt.Sprintf("UPDATE projects SET %s WHERE id = $%d", strings.Join(sets, ", "), n)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return s.getOne(ctx, id)
}

// Delete removes the project with the given ID, or returns ErrNotFound.
// Tasks referencing the project are not cascaded; their references dangle.
func (s *ProjectStore) Delete(ctx context.Context, id string) (err error) {
	defer observe(s.rec, "delete", "project", time.Now(), &err)

	res, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row scanner) (*Project, error) {
	project := &Project{}
	var dueDate sql.NullTime
	var userID sql.NullString
	if err := row.Scan(&project.ID, &project.Name, &project.Description, &dueDate, &userID, &project.CreatedAt, &project.UpdatedAt); err != nil {
		return nil, err
	}
	project.DueDate = nullTime(dueDate)
	project.UserID = nullString(userID)
	return project, nil
}
