package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/taskforge/taskforge/pkg/httputil"
	"github.com/taskforge/taskforge/pkg/observability"
	"github.com/taskforge/taskforge/pkg/storage"
)

// TaskHandlers serves the protected task CRUD routes. Reads by ID resolve
// the weak user and project references into embedded summaries.
type TaskHandlers struct {
	tasks    *storage.TaskStore
	users    *storage.UserStore
	projects *storage.ProjectStore
}

// NewTaskHandlers creates a new task handlers instance.
func NewTaskHandlers(tasks *storage.TaskStore, users *storage.UserStore, projects *storage.ProjectStore) *TaskHandlers {
	return &TaskHandlers{
		tasks:    tasks,
		users:    users,
		projects: projects,
	}
}

// RegisterRoutes registers the task routes on the /tasks subrouter.
func (h *TaskHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("", h.create).Methods("POST")
	router.HandleFunc("", h.list).Methods("GET")
	router.HandleFunc("/{id}", h.get).Methods("GET")
	router.HandleFunc("/{id}", h.update).Methods("PUT")
	router.HandleFunc("/{id}", h.delete).Methods("DELETE")
}

// create handles POST /tasks. The user_id and project_id references are
// stored as given; their targets are not required to exist.
func (h *TaskHandlers) create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	task := &storage.Task{
		Name:        req.Name,
		Description: req.Description,
		DueDate:     req.DueDate,
		UserID:      req.UserID,
		ProjectID:   req.ProjectID,
	}
	if err := h.tasks.Create(r.Context(), task); err != nil {
		writeStoreError(w, r, err, "task")
		return
	}
	httputil.WriteCreated(w, task)
}

// list handles GET /tasks. List responses carry the raw references, not
// the resolved view.
func (h *TaskHandlers) list(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.List(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "task")
		return
	}
	httputil.WriteSuccess(w, tasks)
}

// get handles GET /tasks/{id}, returning the resolved view.
func (h *TaskHandlers) get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	task, err := h.tasks.GetByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, "task")
		return
	}

	detail, err := h.resolve(r.Context(), task)
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("task reference resolution failed")
		httputil.WriteInternalError(w)
		return
	}
	httputil.WriteSuccess(w, detail)
}

// resolve expands the task's weak references into embedded summaries.
// A dangling reference yields a null summary; the task itself is still
// returned.
func (h *TaskHandlers) resolve(ctx context.Context, task *storage.Task) (*TaskDetail, error) {
	detail := &TaskDetail{
		ID:          task.ID,
		Name:        task.Name,
		Description: task.Description,
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	if task.UserID != nil {
		user, err := h.users.GetByID(ctx, *task.UserID)
		switch {
		case err == nil:
			detail.User = &UserSummary{Name: user.Name, Email: user.Email}
		case errors.Is(err, storage.ErrNotFound):
			// dangling reference, leave the summary null
		default:
			return nil, err
		}
	}

	if task.ProjectID != nil {
		project, err := h.projects.GetByID(ctx, *task.ProjectID)
		switch {
		case err == nil:
			detail.Project = &ProjectSummary{
				Name:        project.Name,
				Description: project.Description,
				DueDate:     project.DueDate,
			}
		case errors.Is(err, storage.ErrNotFound):
			// dangling reference, leave the summary null
		default:
			return nil, err
		}
	}

	return detail, nil
}

// update handles PUT /tasks/{id}
func (h *TaskHandlers) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	var req updateTaskRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	task, err := h.tasks.Update(r.Context(), id, storage.TaskUpdate{
		Name:        req.Name,
		Description: req.Description,
		DueDate:     req.DueDate,
		UserID:      req.UserID,
		ProjectID:   req.ProjectID,
	})
	if err != nil {
		writeStoreError(w, r, err, "task")
		return
	}
	httputil.WriteSuccess(w, task)
}

// delete handles DELETE /tasks/{id}
func (h *TaskHandlers) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	if err := h.tasks.Delete(r.Context(), id); err != nil {
		writeStoreError(w, r, err, "task")
		return
	}
	httputil.WriteMessage(w, "task deleted")
}
