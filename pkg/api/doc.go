// Package api wires the HTTP surface of Taskforge: the mux router, the
// login/register flow, the per-entity CRUD handlers, and the relation
// resolver for task reads.
//
// Every route except /login and /register passes through the
// authentication gate before touching a repository.
package api
