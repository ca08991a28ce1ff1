package model

import (
	"encoding/json"
	"strings"
)

// Rank represents the priority code the query service attaches to a
// destination statement. Lower values take priority over higher ones.
//
// Design decision: We use iota-based constants rather than the raw code
// strings for efficiency in comparisons. ParseRank tolerates codes this
// version does not know so that new service-side ranks never break
// normalization.
type Rank int

const (
	// RankPreferred marks the destination the entity's editors consider current.
	RankPreferred Rank = iota

	// RankNormal marks an ordinary destination statement.
	RankNormal

	// RankDeprecated marks a destination known to be stale. Queries exclude
	// these at source; the variant exists for parsing completeness.
	RankDeprecated

	// RankUnknown marks a rank code this version does not recognize.
	RankUnknown
)

// rankOntologyPrefix is the IRI namespace rank codes arrive under.
const rankOntologyPrefix = "http://wikiba.se/ontology#"

// String returns a human-readable representation of the rank.
func (r Rank) String() string {
	switch r {
	case RankPreferred:
		return "preferred"
	case RankNormal:
		return "normal"
	case RankDeprecated:
		return "deprecated"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the rank as its human-readable name.
func (r Rank) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

// UnmarshalJSON decodes a rank from its human-readable name, tolerating
// unrecognized names the same way ParseRank does.
func (r *Rank) UnmarshalJSON(data []byte) error {
	var code string
	if err := json.Unmarshal(data, &code); err != nil {
		return err
	}
	*r = ParseRank(code)
	return nil
}

// ParseRank maps a rank code from a result row to a Rank. Both the full
// ontology IRI and the bare name are accepted, case-insensitively.
// Unrecognized codes map to RankUnknown; parsing never fails.
func ParseRank(code string) Rank {
	c := strings.ToLower(strings.TrimSpace(code))
	c = strings.TrimPrefix(c, rankOntologyPrefix)

	switch c {
	case "preferredrank", "preferred":
		return RankPreferred
	case "normalrank", "normal":
		return RankNormal
	case "deprecatedrank", "deprecated":
		return RankDeprecated
	default:
		return RankUnknown
	}
}
