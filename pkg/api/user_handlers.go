package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/taskforge/taskforge/pkg/auth"
	"github.com/taskforge/taskforge/pkg/httputil"
	"github.com/taskforge/taskforge/pkg/observability"
	"github.com/taskforge/taskforge/pkg/storage"
)

// UserHandlers serves the protected user CRUD routes.
type UserHandlers struct {
	users  *storage.UserStore
	hasher auth.PasswordHasher
}

// NewUserHandlers creates a new user handlers instance.
func NewUserHandlers(users *storage.UserStore, hasher auth.PasswordHasher) *UserHandlers {
	return &UserHandlers{users: users, hasher: hasher}
}

// RegisterRoutes registers the user routes on the /users subrouter.
func (h *UserHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("", h.create).Methods("POST")
	router.HandleFunc("", h.list).Methods("GET")
	router.HandleFunc("/{id}", h.get).Methods("GET")
	router.HandleFunc("/{id}", h.update).Methods("PUT")
	router.HandleFunc("/{id}", h.delete).Methods("DELETE")
}

// create handles POST /users. The password is hashed before persistence;
// a plaintext secret is never stored.
func (h *UserHandlers) create(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Email, "email") {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Password, "password") {
		return
	}

	digest, err := h.hasher.Hash(req.Password)
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("password hashing failed")
		httputil.WriteInternalError(w)
		return
	}

	user := &storage.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: digest,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		writeStoreError(w, r, err, "user")
		return
	}

	httputil.WriteCreated(w, user)
}

// list handles GET /users
func (h *UserHandlers) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "user")
		return
	}
	httputil.WriteSuccess(w, users)
}

// get handles GET /users/{id}
func (h *UserHandlers) get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, "user")
		return
	}
	httputil.WriteSuccess(w, user)
}

// update handles PUT /users/{id}
func (h *UserHandlers) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	var req updateUserRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	upd := storage.UserUpdate{
		Name:  req.Name,
		Email: req.Email,
	}
	if req.Password != nil {
		digest, err := h.hasher.Hash(*req.Password)
		if err != nil {
			httputil.WriteValidationError(w, err.Error())
			return
		}
		upd.PasswordHash = &digest
	}

	user, err := h.users.Update(r.Context(), id, upd)
	if err != nil {
		writeStoreError(w, r, err, "user")
		return
	}
	httputil.WriteSuccess(w, user)
}

// delete handles DELETE /users/{id}
func (h *UserHandlers) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		writeStoreError(w, r, err, "user")
		return
	}
	httputil.WriteMessage(w, "user deleted")
}
