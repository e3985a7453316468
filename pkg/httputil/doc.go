// Package httputil provides HTTP handler utilities for consistent error
// handling, JSON encoding/decoding, and request parsing.
//
// Every error response uses a single body shape, {"error": "<message>"},
// and the transport boundary here is the only place that maps a failure
// kind to an HTTP status code.
package httputil
