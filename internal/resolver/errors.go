package resolver

import "errors"

// Resolver errors.
// These errors are wrapped with token context and can be tested with
// errors.Is().
var (
	// ErrQueryFailed is returned (and stored in Resolution.Err) when query
	// execution fails; the underlying transport or endpoint error appears in
	// the message.
	ErrQueryFailed = errors.New("query execution failed")

	// ErrUnknownOutcome is returned by ParseOutcome for names that no
	// Outcome produces.
	ErrUnknownOutcome = errors.New("unknown outcome")
)
