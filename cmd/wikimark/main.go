// Package main provides the entry point for the wikimark CLI.
//
// wikimark resolves a subdomain token to the official website of the matching
// knowledge-graph entity. A token carrying an entity identifier
// (q42.wikimark.net) is looked up directly; any other token
// (douglas-adams.wikimark.net) runs a full-text entity search.
//
// Usage:
//
//	wikimark serve
//	wikimark resolve <token>
//
// See --help for all available options.
package main

// main is the entry point for wikimark.
func main() {
	Execute()
}
