// Package auth provides the authentication primitives for Taskforge:
// bcrypt password hashing and HMAC-signed identity tokens.
//
// Tokens are self-contained JWTs binding a user ID under a process-wide
// signing secret. The baseline design issues tokens without an expiry
// claim; rotating the secret is the only way to invalidate them.
package auth
