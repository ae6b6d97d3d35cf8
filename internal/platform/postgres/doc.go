// Package postgres provides PostgreSQL implementations of the store
// interfaces. Each entity has its own store; PostgresLibraryStore composes
// them into user-scoped snapshots and applies changesets in a single
// transaction guarded by a per-user advisory lock.
//
// Schema migrations are embedded and run through goose.
package postgres
