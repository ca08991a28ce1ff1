// Package database provides SQLite-based storage for the resolution history.
//
// Every finished resolution is stored as one row: token, classification,
// outcome, top result, navigation target, timing, and the normalized entity
// list as JSON. The resolve path only ever writes; reads happen through the
// history command. This keeps the store an audit trail rather than a query
// cache.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
