// Package resolver drives a token through the resolution pipeline: build the
// query for the token's kind, execute it, normalize the result rows into an
// ordered entity map, and decide the navigation outcome.
//
// The Resolver is the orchestrator. Its collaborators are injected: the query
// executor (usually *sparql.Client), an optional history recorder, a logger,
// and a clock, so every stage can be exercised deterministically in tests.
// A resolution is terminal: rows, an empty result set, and a query failure
// all end in StateResolved, and the caller acts on the Decision.
//
// Row order is never changed here. Entities appear in first-row order,
// destinations in row-arrival order; ranking happens inside the query on the
// endpoint's side.
package resolver
