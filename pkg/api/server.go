package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/taskforge/taskforge/pkg/auth"
	"github.com/taskforge/taskforge/pkg/middleware"
	"github.com/taskforge/taskforge/pkg/observability"
	"github.com/taskforge/taskforge/pkg/storage"
)

// Deps carries the collaborators the API server is built from.
type Deps struct {
	Users    *storage.UserStore
	Projects *storage.ProjectStore
	Tasks    *storage.TaskStore
	Hasher   auth.PasswordHasher
	Tokens   *auth.TokenService
	Metrics  *observability.Metrics // optional
}

// Server is the HTTP API server.
type Server struct {
	router *mux.Router
}

// NewServer creates the API server and wires all routes. Login and
// register stay outside the authentication gate so first use is possible;
// every entity route passes through it.
func NewServer(deps Deps) *Server {
	s := &Server{router: mux.NewRouter()}
	gate := middleware.NewAuthMiddleware(deps.Tokens, deps.Users)

	NewAuthHandlers(deps.Users, deps.Hasher, deps.Tokens, deps.Metrics).RegisterRoutes(s.router)

	users := s.router.PathPrefix("/users").Subrouter()
	users.Use(gate.Handler)
	NewUserHandlers(deps.Users, deps.Hasher).RegisterRoutes(users)

	projects := s.router.PathPrefix("/projects").Subrouter()
	projects.Use(gate.Handler)
	NewProjectHandlers(deps.Projects).RegisterRoutes(projects)

	tasks := s.router.PathPrefix("/tasks").Subrouter()
	tasks.Use(gate.Handler)
	NewTaskHandlers(deps.Tasks, deps.Users, deps.Projects).RegisterRoutes(tasks)

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
