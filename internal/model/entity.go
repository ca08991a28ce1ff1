package model

import (
	"encoding/json"
	"strings"
)

// Destination is one external resource attached to an entity, together with
// the priority code its statement carried.
type Destination struct {
	// URL is the destination address exactly as the query service returned it.
	URL string `json:"url"`

	// Rank is the parsed priority code. Display metadata only: destination
	// order follows row arrival, never a client-side re-sort.
	Rank Rank `json:"rank"`
}

// Entity is one knowledge-graph entity assembled from result rows.
type Entity struct {
	// URI is the canonical entity URI, the deduplication key.
	URI string `json:"uri"`

	// Label is the entity name in the negotiated language.
	Label string `json:"label"`

	// Description is the entity's short description in the negotiated language.
	Description string `json:"description"`

	// Destinations holds the entity's external resources in arrival order.
	// A normalized entity always carries at least one.
	Destinations []Destination `json:"destinations"`
}

// ID derives the entity identifier (for example "Q42") from the entity URI.
// It returns an empty string when the URI does not end in an identifier.
func (e *Entity) ID() string {
	m := entityURIPattern.FindStringSubmatch(e.URI)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}

// EntityMap is an insertion-ordered collection of entities keyed by URI.
// The zero value is not usable; construct with NewEntityMap.
//
// Iteration and serialization follow first-insertion order. Later Puts of a
// URI already present are ignored, so the first row mentioning an entity
// fixes its position.
type EntityMap struct {
	order   []string
	entries map[string]*Entity
}

// NewEntityMap creates an empty EntityMap.
func NewEntityMap() *EntityMap {
	return &EntityMap{
		entries: make(map[string]*Entity),
	}
}

// Put inserts an entity under its URI and reports whether it was inserted.
// A nil entity, an empty URI, or an already-present URI leaves the map
// unchanged.
func (m *EntityMap) Put(e *Entity) bool {
	if e == nil || e.URI == "" {
		return false
	}
	if _, ok := m.entries[e.URI]; ok {
		return false
	}
	m.entries[e.URI] = e
	m.order = append(m.order, e.URI)
	return true
}

// Get returns the entity stored under uri.
func (m *EntityMap) Get(uri string) (*Entity, bool) {
	e, ok := m.entries[uri]
	return e, ok
}

// Len returns the number of entities in the map.
func (m *EntityMap) Len() int {
	return len(m.order)
}

// IsEmpty returns true when the map holds no entities.
func (m *EntityMap) IsEmpty() bool {
	return len(m.order) == 0
}

// Top returns the first-inserted entity.
func (m *EntityMap) Top() (*Entity, bool) {
	if len(m.order) == 0 {
		return nil, false
	}
	return m.entries[m.order[0]], true
}

// Entities returns the entities in insertion order. The slice is freshly
// allocated on every call; the entities themselves are shared.
func (m *EntityMap) Entities() []*Entity {
	entities := make([]*Entity, 0, len(m.order))
	for _, uri := range m.order {
		entities = append(entities, m.entries[uri])
	}
	return entities
}

// URIs returns the entity URIs in insertion order.
func (m *EntityMap) URIs() []string {
	uris := make([]string, len(m.order))
	copy(uris, m.order)
	return uris
}

// MarshalJSON encodes the map as an ordered array of entities.
func (m *EntityMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Entities())
}
