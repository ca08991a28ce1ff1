// Package sparql builds and executes the queries that resolve a token into
// destination rows.
//
// The Builder produces the two query forms: a direct entity lookup for
// identifier tokens and a full-text entity search for everything else. Both
// share one destination statement pattern, so the filtering rules (no
// deprecated ranks, no end-dated statements, label and description required)
// cannot drift apart between the forms.
//
// The Client speaks the standard SPARQL JSON results protocol over HTTP with
// a token-bucket rate limit, a descriptive User-Agent, and no Referer.
// Row order is the endpoint's order throughout; ranking and match ordinals
// are resolved inside the query, never client-side.
package sparql
