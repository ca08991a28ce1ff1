package server

import (
	"testing"
	"time"

	"github.com/wikimark/wikimark/internal/model"
)

func TestNewEntityCard(t *testing.T) {
	t.Parallel()

	t.Run("full entity", func(t *testing.T) {
		t.Parallel()

		entity := &model.Entity{
			URI:         "http://www.wikidata.org/entity/Q42",
			Label:       "Douglas Adams",
			Description: "English author",
			Destinations: []model.Destination{
				{URL: "https://douglasadams.com", Rank: model.RankPreferred},
				{URL: "https://example.com/hhgttg", Rank: model.RankNormal},
			},
		}

		card := newEntityCard(entity, "wikimark.test")

		if card.ID != "Q42" {
			t.Errorf("ID = %q, want %q", card.ID, "Q42")
		}
		if card.Name != "Douglas Adams" {
			t.Errorf("Name = %q, want %q", card.Name, "Douglas Adams")
		}
		if card.Permalink != "//q42.wikimark.test" {
			t.Errorf("Permalink = %q, want %q", card.Permalink, "//q42.wikimark.test")
		}
		if len(card.URLs) != 2 || card.URLs[0] != "https://douglasadams.com" {
			t.Errorf("URLs = %v, want destinations in order", card.URLs)
		}
	})

	t.Run("missing label falls back to the identifier", func(t *testing.T) {
		t.Parallel()

		entity := &model.Entity{URI: "http://www.wikidata.org/entity/Q42"}

		card := newEntityCard(entity, "wikimark.test")
		if card.Name != "Q42" {
			t.Errorf("Name = %q, want %q", card.Name, "Q42")
		}
	})

	t.Run("unrecognized URI gets no permalink", func(t *testing.T) {
		t.Parallel()

		entity := &model.Entity{URI: "https://example.com/thing"}

		card := newEntityCard(entity, "wikimark.test")
		if card.Permalink != "" {
			t.Errorf("Permalink = %q, want empty", card.Permalink)
		}
		if card.Name != "https://example.com/thing" {
			t.Errorf("Name = %q, want the URI", card.Name)
		}
	})
}

func TestMoreLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    int
		want string
	}{
		{n: 1, want: "1 more result"},
		{n: 2, want: "2 more results"},
		{n: 19, want: "19 more results"},
	}

	for _, tt := range tests {
		if got := moreLabel(tt.n); got != tt.want {
			t.Errorf("moreLabel(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestRefreshSeconds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		delay time.Duration
		want  int
	}{
		{name: "zero delay", delay: 0, want: 0},
		{name: "negative delay", delay: -time.Second, want: 0},
		{name: "sub-second delay rounds up", delay: 300 * time.Millisecond, want: 1},
		{name: "exact second", delay: 1000 * time.Millisecond, want: 1},
		{name: "above a second rounds up", delay: 1500 * time.Millisecond, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := refreshSeconds(tt.delay); got != tt.want {
				t.Errorf("refreshSeconds(%v) = %d, want %d", tt.delay, got, tt.want)
			}
		})
	}
}
