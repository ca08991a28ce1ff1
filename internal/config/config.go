package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"golang.org/x/text/language"
)

// Default configuration values.
// These values match the public query service's usage guidelines where
// applicable.
const (
	// DefaultBaseDomain is the domain whose subdomains carry resolution tokens.
	// A request for q42.wikimark.net resolves the token "q42".
	DefaultBaseDomain = "wikimark.net"

	// DefaultEndpoint is the public SPARQL query service endpoint.
	DefaultEndpoint = "https://query.wikidata.org/sparql"

	// DefaultListenAddr is the HTTP listen address for the resolver server.
	DefaultListenAddr = ":8080"

	// DefaultRedirectDelay is how long a search result page waits before
	// navigating to the best match. Direct identifier lookups never wait.
	// The delay exists so a user can read what was matched and stop the
	// navigation.
	DefaultRedirectDelay = 1000 * time.Millisecond

	// DefaultQueryTimeout is the per-query HTTP timeout. Public SPARQL
	// endpoints can take several seconds under load, so this is generous.
	DefaultQueryTimeout = 30 * time.Second

	// DefaultResultLimit caps the number of rows requested per query.
	// 20 rows is enough for one primary match plus a folded result list.
	DefaultResultLimit = 20

	// DefaultLanguage selects entity labels and descriptions when the
	// client does not negotiate one.
	DefaultLanguage = "en"

	// DefaultUserAgent identifies wikimark in query service requests.
	// Public endpoints require a descriptive User-Agent with a contact URL.
	DefaultUserAgent = "wikimark/1.0 (+https://github.com/wikimark/wikimark)"

	// DefaultQueryRate is the sustained query rate (per second) against the
	// endpoint. Public endpoints throttle aggressive clients, so wikimark
	// throttles itself first.
	DefaultQueryRate = 2.0

	// DefaultQueryBurst is the token-bucket burst for query rate limiting.
	DefaultQueryBurst = 4

	// DefaultMaxBodySize limits the response body size read from the
	// endpoint. 5MB covers any result set within DefaultResultLimit.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultBatchSize is the number of concurrent resolutions when the CLI
	// processes multiple tokens.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "wikimark"
)

// Config holds all configuration options for wikimark.
// The struct is populated from CLI flags and the optional config file, then
// passed through the application via dependency injection rather than global
// state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., ServerConfig, QueryConfig) for simplicity. The number of options is
// manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// BaseDomain is the domain whose subdomains carry resolution tokens.
	// The server strips this suffix from the request host to obtain the
	// token, and permalinks are formed under it.
	BaseDomain string

	// Endpoint is the SPARQL query service URL.
	Endpoint string

	// ListenAddr is the HTTP listen address in "host:port" or ":port" form.
	ListenAddr string

	// RedirectDelay is how long a search result page waits before navigating
	// to the best match. Zero disables the wait. Direct identifier lookups
	// always navigate immediately regardless of this value.
	RedirectDelay time.Duration

	// QueryTimeout is the HTTP timeout for each query to the endpoint.
	QueryTimeout time.Duration

	// ResultLimit caps the number of rows requested per query.
	ResultLimit int

	// Language selects entity labels and descriptions. Clients may override
	// it per request through Accept-Language negotiation.
	Language string

	// UserAgent is the User-Agent header sent to the query service.
	// Public endpoints require a descriptive value with contact information.
	UserAgent string

	// QueryRate is the sustained query rate per second against the endpoint.
	QueryRate float64

	// QueryBurst is the token-bucket burst allowed on top of QueryRate.
	QueryBurst int

	// MaxBodySize is the maximum response body size in bytes to read from
	// the endpoint. Set to 0 to use the default.
	MaxBodySize int64

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only informational and higher messages are logged.
	Verbose bool

	// LogJSON switches log output from text to JSON. Useful when the server
	// runs under a log collector.
	LogJSON bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .wikimark in the current directory,
	// the XDG config directory, and the user's home directory.
	ConfigFilePath string

	// JSONReport enables JSON report output for CLI resolutions.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output for CLI resolutions.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for CLI reports.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// Tokens is the list of tokens the CLI resolves.
	Tokens []string

	// NoRedirect marks resolutions as revisits: the result list is produced
	// but no navigation is scheduled, the same as returning to a result page
	// through browser history.
	NoRedirect bool

	// BatchSize is the number of concurrent resolutions when the CLI
	// processes multiple tokens.
	BatchSize int

	// DBDir is the directory path for the SQLite resolution history.
	// When empty, the XDG data directory is used.
	DBDir string

	// SaveHistory indicates whether resolutions are recorded in the local
	// history database. Recording is write-only: the resolve path never
	// reads history back, so this is not a query cache.
	SaveHistory bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
func NewConfig() *Config {
	return &Config{
		BaseDomain:    DefaultBaseDomain,
		Endpoint:      DefaultEndpoint,
		ListenAddr:    DefaultListenAddr,
		RedirectDelay: DefaultRedirectDelay,
		QueryTimeout:  DefaultQueryTimeout,
		ResultLimit:   DefaultResultLimit,
		Language:      DefaultLanguage,
		UserAgent:     DefaultUserAgent,
		QueryRate:     DefaultQueryRate,
		QueryBurst:    DefaultQueryBurst,
		MaxBodySize:   DefaultMaxBodySize,
		BatchSize:     DefaultBatchSize,
	}
}

// XDGDataDir returns the XDG data directory for wikimark.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/wikimark
// On macOS: ~/Library/Application Support/wikimark
// On Windows: %LOCALAPPDATA%\wikimark
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for wikimark.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/wikimark
// On macOS: ~/Library/Application Support/wikimark
// On Windows: %APPDATA%\wikimark
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// We return the first error found rather than collecting all errors because
// fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.BaseDomain == "" {
		return ErrInvalidBaseDomain
	}

	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidEndpoint
	}

	if c.QueryTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.RedirectDelay < 0 {
		return ErrInvalidRedirectDelay
	}

	if c.ResultLimit <= 0 {
		return ErrInvalidResultLimit
	}

	if _, err := language.Parse(c.Language); err != nil {
		return ErrInvalidLanguage
	}

	if c.QueryRate <= 0 {
		return ErrInvalidQueryRate
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
