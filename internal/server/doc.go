// Package server exposes the resolver over HTTP. The subdomain label of the
// request host is the token: q42.example.net looks up entity Q42, while
// douglas-adams.example.net runs a full-text search. Request paths are
// reserved for operational endpoints (health, metrics, favicon); everything
// else falls through to host-based resolution.
//
// Design decision: direct lookups answer with an immediate 302 because the
// token already names exactly one entity. Search resolutions render an
// interstitial result page first and navigate via meta refresh after a short
// delay, so the user can cancel navigation or return through browser history
// to pick a different result. That back-navigation arrives with the
// noredirect query parameter, which keeps the page static.
package server
