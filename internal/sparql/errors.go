package sparql

import "errors"

// Client errors.
// These errors are wrapped with request context by Client.Query and can be
// tested with errors.Is().
var (
	// ErrInvalidEndpoint is returned when the endpoint URL is not an http or
	// https URL with a host.
	ErrInvalidEndpoint = errors.New("invalid endpoint: must be an http or https URL")

	// ErrEndpointStatus is returned when the endpoint answers with a
	// non-success HTTP status. Public endpoints use 400 for malformed
	// queries and 429 when a client exceeds its request allowance.
	ErrEndpointStatus = errors.New("endpoint returned non-success status")

	// ErrMalformedResults is returned when the response body is not a
	// well-formed SPARQL JSON results document.
	ErrMalformedResults = errors.New("malformed results document")
)
