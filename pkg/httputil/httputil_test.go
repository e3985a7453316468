package httputil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/pkg/contextkeys"
	"github.com/taskforge/taskforge/pkg/observability"
)

func TestWriteErrorMessage_Shape(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		body   string
	}{
		{
			name:   "validation error",
			write:  func(w http.ResponseWriter) { WriteValidationError(w, "email is required") },
			status: http.StatusBadRequest,
			body:   `{"error": "email is required"}`,
		},
		{
			name:   "unauthorized",
			write:  func(w http.ResponseWriter) { WriteUnauthorized(w, "authentication failed") },
			status: http.StatusUnauthorized,
			body:   `{"error": "authentication failed"}`,
		},
		{
			name:   "not found",
			write:  func(w http.ResponseWriter) { WriteNotFoundError(w, "task not found") },
			status: http.StatusNotFound,
			body:   `{"error": "task not found"}`,
		},
		{
			name:   "conflict",
			write:  func(w http.ResponseWriter) { WriteConflict(w, "email already registered") },
			status: http.StatusConflict,
			body:   `{"error": "email already registered"}`,
		},
		{
			name:   "internal error hides details",
			write:  WriteInternalError,
			status: http.StatusInternalServerError,
			body:   `{"error": "internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestWriteMessage(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, WriteMessage(w, "user deleted"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message": "user deleted"}`, w.Body.String())
}

func TestWriteCreated(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, WriteCreated(w, map[string]string{"id": "abc"}))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id": "abc"}`, w.Body.String())
}

func TestParseJSON(t *testing.T) {
	var dest struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest("POST", "/", bytes.NewReader([]byte(`{"name": "Alice"}`)))
	require.NoError(t, ParseJSON(req, &dest))
	assert.Equal(t, "Alice", dest.Name)

	req = httptest.NewRequest("POST", "/", bytes.NewReader([]byte(`{broken`)))
	err := ParseJSON(req, &dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestParsePathString(t *testing.T) {
	router := mux.NewRouter()
	var got string
	router.HandleFunc("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := ParsePathStringOrError(w, r, "id")
		require.True(t, ok)
		got = id
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/items/abc-123", nil))
	assert.Equal(t, "abc-123", got)
}

func TestRequireNonEmpty(t *testing.T) {
	w := httptest.NewRecorder()
	assert.True(t, RequireNonEmpty(w, "value", "email"))

	w = httptest.NewRecorder()
	assert.False(t, RequireNonEmpty(w, "", "email"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "email is required")
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = contextkeys.RequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
}

func TestRequestIDMiddleware_PropagatesIncoming(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = contextkeys.RequestID(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "upstream-id", seen)
	assert.Equal(t, "upstream-id", w.Header().Get("X-Request-ID"))
}

func TestRecoveryMiddleware(t *testing.T) {
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	handler := RecoveryMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error": "internal server error"}`, w.Body.String())
}

func TestMaxBytesMiddleware(t *testing.T) {
	handler := MaxBytesMiddleware(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := io.ReadAll(r.Body)
		if err != nil {
			WriteBadRequest(w, "request body too large")
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/", bytes.NewReader(make([]byte, 64))))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/", bytes.NewReader([]byte("ok"))))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := Chain(mw("outer"), mw("inner"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}
