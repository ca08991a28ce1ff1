package sparql

import (
	"fmt"
	"strings"
)

// Knowledge-graph identifiers shared by both query forms.
const (
	// destinationProperty is the official-website property of an entity.
	destinationProperty = "P856"

	// endDateQualifier marks a statement whose validity has ended.
	endDateQualifier = "P582"

	// searchAPIHost is the MediaWiki API host used for full-text entity search.
	searchAPIHost = "www.wikidata.org"
)

// queryPrefixes declares the vocabulary both query forms use. The public
// query service predefines these, but declaring them keeps the query text
// self-contained for other endpoints.
const queryPrefixes = `PREFIX wd: <http://www.wikidata.org/entity/>
PREFIX p: <http://www.wikidata.org/prop/>
PREFIX ps: <http://www.wikidata.org/prop/statement/>
PREFIX pq: <http://www.wikidata.org/prop/qualifier/>
PREFIX wikibase: <http://wikiba.se/ontology#>
PREFIX bd: <http://www.bigdata.com/rdf#>
PREFIX mwapi: <https://www.mediawiki.org/ontology#API/>
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
PREFIX schema: <http://schema.org/>
`

// Builder assembles SPARQL queries for token resolution.
// The zero value is not usable; construct with NewBuilder.
//
// Both query forms share the destination statement pattern, so lookup and
// search cannot drift apart: deprecated-rank statements and statements with
// an end-date qualifier are excluded at source, every row carries a label
// and a description in the builder's language, and the row cap applies.
type Builder struct {
	// language selects entity labels and descriptions.
	language string

	// limit caps the number of result rows.
	limit int
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLanguage sets the label and description language.
// Empty values keep the default.
func WithLanguage(lang string) BuilderOption {
	return func(b *Builder) {
		if lang != "" {
			b.language = lang
		}
	}
}

// WithLimit sets the row cap. Non-positive values keep the default.
func WithLimit(limit int) BuilderOption {
	return func(b *Builder) {
		if limit > 0 {
			b.limit = limit
		}
	}
}

// NewBuilder creates a Builder with the default language ("en") and row cap (20).
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		language: "en",
		limit:    20,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// LookupQuery builds the query for a direct entity lookup.
// The identifier is uppercased and embedded exactly once. Result rows are
// ordered by descending rank; the rank IRIs happen to sort correctly under
// string comparison (Preferred > Normal > Deprecated).
//
// The identifier comes from a hostname label and is embedded after
// uppercasing only; the endpoint rejects queries where the label was not an
// identifier, which surfaces as an ordinary query failure.
func (b *Builder) LookupQuery(id string) string {
	return fmt.Sprintf(`%sSELECT ?entity ?label ?description ?url ?rank WHERE {
  VALUES ?entity { wd:%s }
%s}
ORDER BY DESC(?rank)
LIMIT %d
`, queryPrefixes, strings.ToUpper(id), b.statementPattern(), b.limit)
}

// SearchQuery builds the query for a full-text entity search through the
// query service's MediaWiki API federation. The term is embedded exactly
// once. Result rows are ordered by ascending search-match ordinal, then by
// descending rank within each match.
func (b *Builder) SearchQuery(term string) string {
	return fmt.Sprintf(`%sSELECT ?entity ?label ?description ?url ?rank WHERE {
  SERVICE wikibase:mwapi {
    bd:serviceParam wikibase:endpoint "%s" ;
                    wikibase:api "EntitySearch" ;
                    mwapi:search "%s" ;
                    mwapi:language "%s" .
    ?entity wikibase:apiOutputItem mwapi:item .
    ?ordinal wikibase:apiOrdinal true .
  }
%s}
ORDER BY ASC(?ordinal) DESC(?rank)
LIMIT %d
`, queryPrefixes, searchAPIHost, escapeLiteral(term), b.language, b.statementPattern(), b.limit)
}

// statementPattern is the shared graph pattern binding one destination row:
// a current, non-deprecated destination statement plus the entity's label
// and description in the builder's language.
func (b *Builder) statementPattern() string {
	return fmt.Sprintf(`  ?entity p:%[1]s ?statement .
  ?statement ps:%[1]s ?url .
  ?statement wikibase:rank ?rank .
  FILTER(?rank != wikibase:DeprecatedRank)
  FILTER NOT EXISTS { ?statement pq:%[2]s ?ended . }
  ?entity rdfs:label ?label .
  FILTER(LANG(?label) = "%[3]s")
  ?entity schema:description ?description .
  FILTER(LANG(?description) = "%[3]s")
`, destinationProperty, endDateQualifier, b.language)
}

// escapeLiteral makes a term safe inside a double-quoted SPARQL literal.
// Backslashes and quotes are escaped; control characters become spaces.
func escapeLiteral(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	for _, r := range s {
		switch {
		case r == '\\':
			sb.WriteString(`\\`)
		case r == '"':
			sb.WriteString(`\"`)
		case r < 0x20:
			sb.WriteByte(' ')
		default:
			sb.WriteRune(r)
		}
	}

	return sb.String()
}
