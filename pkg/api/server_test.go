package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskforge/taskforge/pkg/auth"
	"github.com/taskforge/taskforge/pkg/storage"
)

// newTestServer builds a fully wired server over an in-memory SQLite
// database. The low bcrypt cost keeps the suite fast.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.EnsureSchema(context.Background(), db))

	tokens, err := auth.NewTokenService("test-secret")
	require.NoError(t, err)

	return NewServer(Deps{
		Users:    storage.NewUserStore(db),
		Projects: storage.NewProjectStore(db),
		Tasks:    storage.NewTaskStore(db),
		Hasher:   auth.NewBcryptHasher(bcrypt.MinCost),
		Tokens:   tokens,
	})
}

func do(t *testing.T, srv *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// registerAndLogin creates an account and returns a usable bearer token.
func registerAndLogin(t *testing.T, srv *Server, email string) string {
	t.Helper()

	w := do(t, srv, "POST", "/register", "", map[string]string{
		"name":     "Alice",
		"email":    email,
		"password": "pw123456",
	})
	require.Equal(t, http.StatusOK, w.Code, "register failed: %s", w.Body.String())

	w = do(t, srv, "POST", "/login", "", map[string]string{
		"email":    email,
		"password": "pw123456",
	})
	require.Equal(t, http.StatusOK, w.Code, "login failed: %s", w.Body.String())

	token, ok := decodeBody(t, w)["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

func TestRegisterLoginFlow(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, "POST", "/register", "", map[string]string{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "pw123456",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message": "user created"}`, w.Body.String())

	// Wrong password and unknown email are indistinguishable.
	for _, creds := range []map[string]string{
		{"email": "alice@example.com", "password": "wrong"},
		{"email": "nobody@example.com", "password": "pw123456"},
	} {
		w = do(t, srv, "POST", "/login", "", creds)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error": "authentication failed"}`, w.Body.String())
	}

	w = do(t, srv, "POST", "/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "pw123456",
	})
	require.Equal(t, http.StatusOK, w.Code)
	token := decodeBody(t, w)["token"].(string)
	require.NotEmpty(t, token)

	w = do(t, srv, "GET", "/users", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice@example.com")
	// The plaintext password and the digest never leave the server.
	assert.NotContains(t, w.Body.String(), "pw123456")
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	srv := newTestServer(t)

	body := map[string]string{"name": "Alice", "email": "alice@example.com", "password": "pw123456"}
	w := do(t, srv, "POST", "/register", "", body)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, srv, "POST", "/register", "", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "email")
}

func TestRegister_Validation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body map[string]string
		want string
	}{
		{name: "missing email", body: map[string]string{"password": "pw"}, want: "email is required"},
		{name: "missing password", body: map[string]string{"email": "a@example.com"}, want: "password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, "POST", "/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}

func TestAuthGate_CoversEntityRoutes(t *testing.T) {
	srv := newTestServer(t)

	routes := []struct {
		method string
		path   string
	}{
		{"GET", "/users"},
		{"POST", "/users"},
		{"GET", "/users/some-id"},
		{"PUT", "/users/some-id"},
		{"DELETE", "/users/some-id"},
		{"GET", "/projects"},
		{"POST", "/projects"},
		{"GET", "/tasks"},
		{"POST", "/tasks"},
		{"DELETE", "/tasks/some-id"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			w := do(t, srv, rt.method, rt.path, "", map[string]string{})
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error": "authentication failed"}`, w.Body.String())
		})
	}
}

func TestAuthGate_RejectsTamperedToken(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "alice@example.com")

	w := do(t, srv, "GET", "/users", token+"x", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInvalidJSONBody(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "alice@example.com")

	req := httptest.NewRequest("POST", "/projects", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid JSON")
}
