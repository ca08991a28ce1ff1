package resolver

import (
	"time"

	"github.com/wikimark/wikimark/internal/model"
)

// Decision is the navigation outcome for one resolution. The target is
// locked in when the decision is made and never re-evaluated afterwards.
type Decision struct {
	// Outcome classifies the decision.
	Outcome Outcome

	// Target is the destination URL navigation goes to. Set only for
	// OutcomeNavigate.
	Target string

	// Delay is how long the result page stays visible before navigation.
	// Zero for direct lookups: an identifier names exactly one entity, so
	// there is nothing for the user to double-check.
	Delay time.Duration
}

// Decide derives the navigation decision from a normalized entity map.
//
// An empty map is "not found". The back-navigation signal suppresses
// automatic navigation entirely so a user returning through browser history
// is not bounced straight back out; the results stay displayed. Otherwise
// navigation goes to the first destination of the first-inserted entity,
// immediately for a direct lookup and after delay for a search.
func Decide(entities *model.EntityMap, kind model.TokenKind, backNavigation bool, delay time.Duration) Decision {
	if entities == nil || entities.IsEmpty() {
		return Decision{Outcome: OutcomeNotFound}
	}

	if backNavigation {
		return Decision{Outcome: OutcomeDisplay}
	}

	if kind == model.TokenKindLookup {
		delay = 0
	}

	// Every normalized entity carries at least one destination; rows without
	// a usable destination never create an entity.
	top, _ := entities.Top()
	return Decision{
		Outcome: OutcomeNavigate,
		Target:  top.Destinations[0].URL,
		Delay:   delay,
	}
}
