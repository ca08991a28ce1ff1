package database

import "errors"

// Database errors.
// These errors are wrapped with path context and can be tested with
// errors.Is().
var (
	// ErrDatabaseNotFound is returned by Open when CreateIfNotExists is
	// false and no database file exists. The history command treats this as
	// "nothing recorded yet" rather than a failure.
	ErrDatabaseNotFound = errors.New("history database not found")
)
