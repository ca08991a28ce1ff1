// Package log provides logging for wikimark with automatic masking of
// credentials and truncation of oversized values, built on top of the
// standard slog package.
//
// This package extends slog to provide:
//   - Masking of credential-bearing attributes (Authorization, Cookie, ...)
//   - Truncation of long values such as SPARQL query text
//   - Configurable log levels with verbose mode support
//   - Text output for the CLI and JSON output for the server
//
// The server logs request attributes wholesale, so the RedactHandler guards
// against credentials leaking into logs that may be shared or stored. The
// resolution token itself is never masked; it is the subdomain label under
// resolution, not a credential.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	logger.Info("token resolved",
//	    "token", "q42",
//	    "authorization", "Bearer abc",  // Will be masked
//	)
//
//	slog.SetDefault(logger)
package log
