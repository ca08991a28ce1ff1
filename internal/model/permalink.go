package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Permalink errors.
var (
	// ErrMalformedEntityURI is returned when a URI does not end in an entity identifier.
	ErrMalformedEntityURI = errors.New("malformed entity URI")
)

// entityURIPattern matches the trailing entity identifier of an entity URI,
// e.g. http://www.wikidata.org/entity/Q42.
var entityURIPattern = regexp.MustCompile(`/entity/([Qq]\d+)$`)

// Permalink converts an entity URI into a protocol-relative address under
// the base domain. The identifier is lowercased so it forms a valid host
// label:
//
//	Permalink("http://www.wikidata.org/entity/Q42", "wikimark.net")
//	  => "//q42.wikimark.net"
func Permalink(entityURI, baseDomain string) (string, error) {
	m := entityURIPattern.FindStringSubmatch(entityURI)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedEntityURI, entityURI)
	}

	base := strings.Trim(strings.ToLower(baseDomain), ".")
	return "//" + strings.ToLower(m[1]) + "." + base, nil
}
