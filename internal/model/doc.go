// Package model defines the core data structures used throughout wikimark.
//
// This package contains the following main types:
//   - Token: A classified subdomain label awaiting resolution
//   - Rank: The priority code attached to a destination statement
//   - Entity and EntityMap: Normalized query results in arrival order
//   - Permalink: The canonical subdomain address of an entity
//
// Design decision: We separate models into their own package to avoid
// circular dependencies. Multiple packages (sparql, resolver, server,
// report) need these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
