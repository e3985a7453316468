// Package middleware provides the authentication gate applied to every
// protected route.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/taskforge/taskforge/pkg/auth"
	"github.com/taskforge/taskforge/pkg/contextkeys"
	"github.com/taskforge/taskforge/pkg/httputil"
	"github.com/taskforge/taskforge/pkg/observability"
	"github.com/taskforge/taskforge/pkg/storage"
)

// All rejection paths share this message so callers cannot distinguish a
// malformed header from a bad signature or an unknown principal.
const authFailedMessage = "authentication failed"

// PrincipalStore resolves a decoded token subject into a live principal.
type PrincipalStore interface {
	GetByID(ctx context.Context, id string) (*storage.User, error)
}

// AuthMiddleware guards protected routes. It extracts the bearer token,
// verifies it, resolves the principal, and attaches it to the request
// context. It never mutates state.
type AuthMiddleware struct {
	tokens *auth.TokenService
	users  PrincipalStore
}

// NewAuthMiddleware creates a new authentication middleware.
func NewAuthMiddleware(tokens *auth.TokenService, users PrincipalStore) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		users:  users,
	}
}

// Handler wraps an HTTP handler with authentication.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.reject(w, r, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			m.reject(w, r, "malformed authorization header")
			return
		}

		userID, err := m.tokens.Verify(parts[1])
		if err != nil {
			m.reject(w, r, "token verification failed")
			return
		}

		principal, err := m.users.GetByID(r.Context(), userID)
		if err != nil {
			// An unknown principal is an authentication failure, not a
			// 404, so token holders cannot probe for user existence.
			if errors.Is(err, storage.ErrNotFound) {
				m.reject(w, r, "principal not found")
				return
			}
			observability.FromContext(r.Context()).WithError(err).Error("principal lookup failed")
			httputil.WriteInternalError(w)
			return
		}

		ctx := contextkeys.WithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// reject logs the internal reason and returns the uniform 401 response.
func (m *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request, reason string) {
	observability.FromContext(r.Context()).WithField("reason", reason).Debug("request rejected by authentication gate")
	httputil.WriteUnauthorized(w, authFailedMessage)
}

// GetPrincipal extracts the authenticated principal from the request, or
// nil when the gate did not run.
func GetPrincipal(r *http.Request) *storage.User {
	principal, ok := contextkeys.Principal(r.Context()).(*storage.User)
	if !ok {
		return nil
	}
	return principal
}
