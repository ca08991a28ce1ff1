package resolver

import (
	"net/url"
	"strings"

	"github.com/wikimark/wikimark/internal/model"
	"github.com/wikimark/wikimark/internal/sparql"
)

// onionSuffix marks destinations inside the Tor network. A plain browser
// cannot resolve them, so they are useless as navigation targets.
const onionSuffix = ".onion"

// Normalize folds an ordered row sequence into an entity map.
//
// Rows arrive one per destination statement, so several rows may name the
// same entity. The first row mentioning an entity fixes its label,
// description, and position in the map; every row appends one destination in
// arrival order. Ordering is inherited entirely from the input: the query's
// ORDER BY already encodes relevance and rank, and nothing is re-sorted here.
//
// Rows missing an entity or destination, and rows whose destination points
// at an .onion host, are skipped whole: they neither create an entity nor
// append a destination. Every entity in the returned map therefore carries
// at least one destination. Unrecognized rank codes are kept as
// model.RankUnknown rather than dropping the row.
func Normalize(rows []sparql.Row) *model.EntityMap {
	entities := model.NewEntityMap()

	for _, row := range rows {
		if row.Entity == "" || row.Destination == "" || isOnionDestination(row.Destination) {
			continue
		}

		entity, ok := entities.Get(row.Entity)
		if !ok {
			entity = &model.Entity{
				URI:         row.Entity,
				Label:       row.Label,
				Description: row.Description,
			}
			entities.Put(entity)
		}

		entity.Destinations = append(entity.Destinations, model.Destination{
			URL:  row.Destination,
			Rank: model.ParseRank(row.RankCode),
		})
	}

	return entities
}

// isOnionDestination reports whether a destination URL points at an .onion
// host. The check is best-effort: only a parseable URL whose host carries
// the suffix is rejected, anything else stays a valid destination.
func isOnionDestination(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Hostname()), onionSuffix)
}
