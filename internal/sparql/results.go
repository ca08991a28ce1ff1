package sparql

import (
	"encoding/json"
	"fmt"
	"io"
)

// Result variable names shared between the query builder and the decoder.
const (
	varEntity      = "entity"
	varLabel       = "label"
	varDescription = "description"
	varURL         = "url"
	varRank        = "rank"
)

// Row is one flattened result binding from the query service. Rows keep the
// endpoint's ordering; nothing in this package re-sorts them.
type Row struct {
	// Entity is the entity URI.
	Entity string

	// Label is the entity name in the query's language.
	Label string

	// Description is the entity's short description in the query's language.
	Description string

	// Destination is the destination URL bound by one statement.
	Destination string

	// RankCode is the raw rank code IRI. model.ParseRank interprets it;
	// unrecognized codes are tolerated downstream.
	RankCode string
}

// resultsDocument mirrors the application/sparql-results+json envelope.
// Only the bindings are consumed; the head section is ignored.
type resultsDocument struct {
	Results struct {
		Bindings []map[string]boundValue `json:"bindings"`
	} `json:"results"`
}

// boundValue is one bound term in a results document.
type boundValue struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Lang     string `json:"xml:lang,omitempty"`
	Datatype string `json:"datatype,omitempty"`
}

// decodeRows parses a results document into the flattened row sequence,
// preserving document order. Variables absent from a binding decode to
// empty strings; the normalizer decides what to do with incomplete rows.
func decodeRows(r io.Reader) ([]Row, error) {
	var doc resultsDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResults, err)
	}

	rows := make([]Row, 0, len(doc.Results.Bindings))
	for _, b := range doc.Results.Bindings {
		rows = append(rows, Row{
			Entity:      b[varEntity].Value,
			Label:       b[varLabel].Value,
			Description: b[varDescription].Value,
			Destination: b[varURL].Value,
			RankCode:    b[varRank].Value,
		})
	}

	return rows, nil
}
