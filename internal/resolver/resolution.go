package resolver

import (
	"fmt"
	"strings"
	"time"

	"github.com/wikimark/wikimark/internal/model"
)

// State is the lifecycle position of one resolution.
type State int

const (
	// StateAwaitingResult means the query has been submitted and the
	// resolution waits for rows or a failure.
	StateAwaitingResult State = iota

	// StateResolved is the terminal state. Rows, an empty result set, and a
	// query failure all end here; the Decision says which.
	StateResolved
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateAwaitingResult:
		return "awaiting_result"
	case StateResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Outcome classifies how a resolution ended.
type Outcome int

const (
	// OutcomeNavigate means navigation to the top result is scheduled.
	OutcomeNavigate Outcome = iota

	// OutcomeDisplay means results are shown without automatic navigation.
	// This is the back-navigation path: the user returned to the result page
	// and must pick a destination manually.
	OutcomeDisplay

	// OutcomeNotFound means the query succeeded but matched no entity.
	OutcomeNotFound

	// OutcomeFailed means query execution failed. No entity map exists.
	OutcomeFailed
)

// String returns the outcome name used in logs, metrics labels, and the
// history database.
func (o Outcome) String() string {
	switch o {
	case OutcomeNavigate:
		return "navigate"
	case OutcomeDisplay:
		return "display"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ParseOutcome maps an outcome name back to its Outcome. It accepts the
// exact strings Outcome.String produces, case-insensitively.
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "navigate":
		return OutcomeNavigate, nil
	case "display":
		return OutcomeDisplay, nil
	case "not_found":
		return OutcomeNotFound, nil
	case "failed":
		return OutcomeFailed, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOutcome, s)
	}
}

// Resolution is the record of one token resolution from submission to its
// terminal state. It is built once per query response and not mutated after
// the resolver returns it.
type Resolution struct {
	// ID uniquely identifies this resolution, also used as the history key.
	ID string

	// Token is the classified token under resolution.
	Token model.Token

	// State is the lifecycle position; always StateResolved on return.
	State State

	// Language is the label and description language the query used.
	Language string

	// Entities is the normalized entity map in upstream relevance order.
	// Nil when the query failed.
	Entities *model.EntityMap

	// Decision is the navigation outcome derived from the entity map.
	Decision Decision

	// Err is the terminal error for OutcomeFailed resolutions, nil otherwise.
	Err error

	// StartedAt is when the query was submitted.
	StartedAt time.Time

	// Duration is the time from query submission to the terminal state.
	Duration time.Duration
}

// StatusText is the user-facing status line for the resolution.
func (r *Resolution) StatusText() string {
	switch r.Decision.Outcome {
	case OutcomeNavigate:
		if r.Decision.Delay > 0 {
			return fmt.Sprintf("redirecting to %s in %s", r.Decision.Target, r.Decision.Delay)
		}
		return "redirecting to " + r.Decision.Target
	case OutcomeDisplay:
		return fmt.Sprintf("%d result(s)", r.EntityCount())
	case OutcomeNotFound:
		return "not found"
	case OutcomeFailed:
		return "search failed"
	default:
		return "unknown"
	}
}

// EntityCount returns the number of entities in the map, zero for failed
// resolutions that never produced one.
func (r *Resolution) EntityCount() int {
	if r.Entities == nil {
		return 0
	}
	return r.Entities.Len()
}

// Top returns the designated top result: the first-inserted entity.
func (r *Resolution) Top() (*model.Entity, bool) {
	if r.Entities == nil {
		return nil, false
	}
	return r.Entities.Top()
}
