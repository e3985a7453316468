package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordStorageOperation(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.RecordStorageOperation("create", "user", 10*time.Millisecond, nil)
	m.RecordStorageOperation("create", "user", 10*time.Millisecond, errors.New("boom"))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.StorageOperationsTotal.WithLabelValues("create", "user", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.StorageOperationsTotal.WithLabelValues("create", "user", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.StorageErrorsTotal.WithLabelValues("create", "user")))
}

func TestMetrics_RecordAuthAttempt(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.RecordAuthAttempt("success")
	m.RecordAuthAttempt("failure")
	m.RecordAuthAttempt("failure")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.AuthAttemptsTotal.WithLabelValues("success")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.AuthAttemptsTotal.WithLabelValues("failure")))
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	handler := HTTPMetricsMiddleware(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("nope"))
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/tasks/42", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/tasks/42", "404")))
}

func TestRegisterMetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)
	m.RecordAuthAttempt("success")

	mux := http.NewServeMux()
	RegisterMetricsEndpoint(mux, registry)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "taskforge_auth_attempts_total")
}
