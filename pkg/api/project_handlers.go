package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/taskforge/taskforge/pkg/httputil"
	"github.com/taskforge/taskforge/pkg/storage"
)

// ProjectHandlers serves the protected project CRUD routes. The user_id
// reference passes through without existence validation.
type ProjectHandlers struct {
	projects *storage.ProjectStore
}

// NewProjectHandlers creates a new project handlers instance.
func NewProjectHandlers(projects *storage.ProjectStore) *ProjectHandlers {
	return &ProjectHandlers{projects: projects}
}

// RegisterRoutes registers the project routes on the /projects subrouter.
func (h *ProjectHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("", h.create).Methods("POST")
	router.HandleFunc("", h.list).Methods("GET")
	router.HandleFunc("/{id}", h.get).Methods("GET")
	router.HandleFunc("/{id}", h.update).Methods("PUT")
	router.HandleFunc("/{id}", h.delete).Methods("DELETE")
}

// create handles POST /projects
func (h *ProjectHandlers) create(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	project := &storage.Project{
		Name:        req.Name,
		Description: req.Description,
		DueDate:     req.DueDate,
		UserID:      req.UserID,
	}
	if err := h.projects.Create(r.Context(), project); err != nil {
		writeStoreError(w, r, err, "project")
		return
	}
	httputil.WriteCreated(w, project)
}

// list handles GET /projects
func (h *ProjectHandlers) list(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.List(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "project")
		return
	}
	httputil.WriteSuccess(w, projects)
}

// get handles GET /projects/{id}
func (h *ProjectHandlers) get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	project, err := h.projects.GetByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, "project")
		return
	}
	httputil.WriteSuccess(w, project)
}

// update handles PUT /projects/{id}
func (h *ProjectHandlers) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	var req updateProjectRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	project, err := h.projects.Update(r.Context(), id, storage.ProjectUpdate{
		Name:        req.Name,
		Description: req.Description,
		DueDate:     req.DueDate,
		UserID:      req.UserID,
	})
	if err != nil {
		writeStoreError(w, r, err, "project")
		return
	}
	httputil.WriteSuccess(w, project)
}

// delete handles DELETE /projects/{id}. Tasks referencing the project keep
// their now-dangling reference.
func (h *ProjectHandlers) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	if err := h.projects.Delete(r.Context(), id); err != nil {
		writeStoreError(w, r, err, "project")
		return
	}
	httputil.WriteMessage(w, "project deleted")
}
