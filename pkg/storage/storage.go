package storage

import (
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

// Sentinel errors returned by the repositories. Raw driver errors are
// wrapped and never surface to HTTP callers directly.
var (
	// ErrNotFound is returned when no record exists for the given ID.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when creating or updating a user would
	// violate email uniqueness.
	ErrDuplicateEmail = errors.New("email already registered")
)

// Recorder records storage operation outcomes for instrumentation.
// observability.Metrics implements this interface.
type Recorder interface {
	RecordStorageOperation(operation, entity string, duration time.Duration, err error)
}

// nopRecorder is used when no recorder is configured.
type nopRecorder struct{}

func (nopRecorder) RecordStorageOperation(string, string, time.Duration, error) {}

// observe records a single operation against the recorder. Call it with
// defer and a pointer to the named error return.
func observe(rec Recorder, operation, entity string, start time.Time, err *error) {
	rec.RecordStorageOperation(operation, entity, time.Since(start), *err)
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (class 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// nullString converts a nullable column to an optional field.
func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// nullTime converts a nullable timestamp column to an optional field.
func nullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
