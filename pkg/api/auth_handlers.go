package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/taskforge/taskforge/pkg/auth"
	"github.com/taskforge/taskforge/pkg/httputil"
	"github.com/taskforge/taskforge/pkg/observability"
	"github.com/taskforge/taskforge/pkg/storage"
)

// AuthHandlers serves the unauthenticated credential exchange: register
// and login.
type AuthHandlers struct {
	users   *storage.UserStore
	hasher  auth.PasswordHasher
	tokens  *auth.TokenService
	metrics *observability.Metrics
}

// NewAuthHandlers creates a new auth handlers instance. metrics may be nil.
func NewAuthHandlers(users *storage.UserStore, hasher auth.PasswordHasher, tokens *auth.TokenService, metrics *observability.Metrics) *AuthHandlers {
	return &AuthHandlers{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		metrics: metrics,
	}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/register", h.register).Methods("POST")
	router.HandleFunc("/login", h.login).Methods("POST")
}

// register handles POST /register
func (h *AuthHandlers) register(w http.ResponseWriter, r *http.Request) {
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

	httputil.WriteMessage(w, "user created")
}

// login handles POST /login. A missing user and a wrong password produce
// the same external failure so accounts cannot be enumerated.
func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	logger := observability.FromContext(r.Context())

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logger.WithField("reason", "unknown email").Debug("login failed")
			h.authFailure(w)
			return
		}
		logger.WithError(err).Error("login lookup failed")
		httputil.WriteInternalError(w)
		return
	}

	match, err := h.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		logger.WithError(err).Error("password verification failed")
		httputil.WriteInternalError(w)
		return
	}
	if !match {
		logger.WithField("reason", "password mismatch").Debug("login failed")
		h.authFailure(w)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		logger.WithError(err).Error("token issuance failed")
		httputil.WriteInternalError(w)
		return
	}

	h.recordAuth("success")
	httputil.WriteSuccess(w, map[string]string{"token": token})
}

func (h *AuthHandlers) authFailure(w http.ResponseWriter) {
	h.recordAuth("failure")
	httputil.WriteUnauthorized(w, "authentication failed")
}

func (h *AuthHandlers) recordAuth(outcome string) {
	if h.metrics != nil {
		h.metrics.RecordAuthAttempt(outcome)
	}
}
