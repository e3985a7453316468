package api

import (
	"errors"
	"net/http"

	"github.com/taskforge/taskforge/pkg/httputil"
	"github.com/taskforge/taskforge/pkg/observability"
	"github.com/taskforge/taskforge/pkg/storage"
)

// writeStoreError maps a repository failure to an HTTP response. NotFound
// and Conflict are user-visible; everything else is logged and collapsed
// into a generic 500 so raw store errors never reach the caller.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, entity string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		httputil.WriteNotFoundError(w, entity+" not found")
	case errors.Is(err, storage.ErrDuplicateEmail):
		httputil.WriteConflict(w, storage.ErrDuplicateEmail.Error())
	default:
		observability.FromContext(r.Context()).WithError(err).WithField("entity", entity).Error("storage operation failed")
		httputil.WriteInternalError(w)
	}
}
