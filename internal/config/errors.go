package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoToken is returned when the resolve command receives no token.
	ErrNoToken = errors.New("no token specified: provide at least one token to resolve")

	// ErrInvalidBaseDomain is returned when the base domain is empty.
	// Without it the server cannot extract tokens from request hosts.
	ErrInvalidBaseDomain = errors.New("invalid base domain: must not be empty")

	// ErrInvalidEndpoint is returned when the endpoint is not an http or
	// https URL with a host.
	ErrInvalidEndpoint = errors.New("invalid endpoint: must be an http or https URL")

	// ErrInvalidTimeout is returned when the query timeout is not positive.
	// A timeout of zero or negative would cause immediate query failures.
	ErrInvalidTimeout = errors.New("invalid query timeout: must be positive")

	// ErrInvalidRedirectDelay is returned when the redirect delay is negative.
	// Use 0 to navigate search results immediately.
	ErrInvalidRedirectDelay = errors.New("invalid redirect delay: must be non-negative")

	// ErrInvalidResultLimit is returned when the result limit is not positive.
	// A limit of zero would produce empty result sets for every token.
	ErrInvalidResultLimit = errors.New("invalid result limit: must be positive")

	// ErrInvalidLanguage is returned when the language is not a well-formed
	// language tag such as "en" or "pt-BR".
	ErrInvalidLanguage = errors.New("invalid language: must be a well-formed language tag")

	// ErrInvalidQueryRate is returned when the query rate is not positive.
	// The endpoint rate limit cannot be disabled, only raised.
	ErrInvalidQueryRate = errors.New("invalid query rate: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no concurrent resolutions, effectively
	// stopping batch processing.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
