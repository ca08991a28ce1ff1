package server

import (
	"fmt"
	"time"

	"github.com/wikimark/wikimark/internal/model"
)

// entityCard is the template view of one resolved entity.
type entityCard struct {
	ID          string
	Name        string
	Description string
	Permalink   string // subdomain permalink, empty when not derivable
	URLs        []string
}

// resultsView feeds the results page, which doubles as the redirect
// interstitial when RefreshSeconds is positive.
type resultsView struct {
	Token          string
	Status         string
	Primary        entityCard
	More           []entityCard
	MoreLabel      string
	RefreshSeconds int
	RefreshTarget  string
	StayLink       string
	BaseDomain     string
}

// statusView feeds the not-found and failure pages.
type statusView struct {
	Token      string
	Status     string
	BaseDomain string
}

// landingView feeds the landing page shown on the bare base domain.
type landingView struct {
	BaseDomain string
}

// newEntityCard converts an entity into its card view. The permalink is
// omitted when the entity URI does not carry a recognizable identifier.
func newEntityCard(entity *model.Entity, baseDomain string) entityCard {
	card := entityCard{
		ID:          entity.ID(),
		Name:        entity.Label,
		Description: entity.Description,
	}
	if card.Name == "" {
		card.Name = card.ID
	}
	if card.Name == "" {
		card.Name = entity.URI
	}

	if link, err := model.Permalink(entity.URI, baseDomain); err == nil {
		card.Permalink = link
	}

	card.URLs = make([]string, 0, len(entity.Destinations))
	for _, dest := range entity.Destinations {
		card.URLs = append(card.URLs, dest.URL)
	}
	return card
}

// entityCards converts all entities in insertion order.
func entityCards(entities []*model.Entity, baseDomain string) []entityCard {
	cards := make([]entityCard, 0, len(entities))
	for _, entity := range entities {
		cards = append(cards, newEntityCard(entity, baseDomain))
	}
	return cards
}

// moreLabel captions the collapsed container of secondary results.
func moreLabel(n int) string {
	if n == 1 {
		return "1 more result"
	}
	return fmt.Sprintf("%d more results", n)
}

// refreshSeconds converts the navigation delay into whole seconds for the
// meta refresh directive, rounding up so a sub-second delay still gives the
// interstitial time to render.
func refreshSeconds(delay time.Duration) int {
	if delay <= 0 {
		return 0
	}
	return int((delay + time.Second - 1) / time.Second)
}
