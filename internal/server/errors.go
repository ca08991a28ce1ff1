package server

import "errors"

var (
	// ErrNoConfig is returned when New is called without a configuration.
	ErrNoConfig = errors.New("server requires a configuration")

	// ErrNoResolver is returned when New is called without a token resolver.
	ErrNoResolver = errors.New("server requires a token resolver")
)
