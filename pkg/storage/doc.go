// Package storage provides the entity repositories for Taskforge over
// database/sql: users, projects, and tasks.
//
// References between entities (user_id, project_id) are weak: they are
// stored without foreign-key enforcement and their targets may not exist.
// Consumers must tolerate dangling references. Every write is a single
// atomic statement; no multi-record transactions are used.
package storage
