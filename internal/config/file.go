package config

import (
	"fmt"
	"time"
)

// File represents the structure of the .wikimark configuration file.
// Every field is optional: values left empty keep whatever the defaults and
// command-line flags already set, so the file only needs to name the
// settings it changes.
type File struct {
	// BaseDomain is the domain whose subdomains carry resolution tokens.
	BaseDomain string `yaml:"baseDomain,omitempty"`

	// Endpoint is the SPARQL query service URL.
	Endpoint string `yaml:"endpoint,omitempty"`

	// Listen is the HTTP listen address for the resolver server.
	Listen string `yaml:"listen,omitempty"`

	// Language selects entity labels and descriptions.
	Language string `yaml:"language,omitempty"`

	// RedirectDelay is the search navigation delay as a duration string
	// such as "1s" or "750ms".
	RedirectDelay string `yaml:"redirectDelay,omitempty"`

	// QueryTimeout is the per-query HTTP timeout as a duration string.
	QueryTimeout string `yaml:"queryTimeout,omitempty"`

	// ResultLimit caps the number of rows requested per query.
	ResultLimit int `yaml:"resultLimit,omitempty"`

	// QueryRate is the sustained query rate per second against the endpoint.
	QueryRate float64 `yaml:"queryRate,omitempty"`

	// UserAgent is the User-Agent header sent to the query service.
	UserAgent string `yaml:"userAgent,omitempty"`

	// History toggles the local resolution history database.
	// A pointer distinguishes "not set" from an explicit false.
	History *bool `yaml:"history,omitempty"`

	// HistoryDir overrides the directory of the history database.
	HistoryDir string `yaml:"historyDir,omitempty"`
}

// ApplyTo merges the file's settings into cfg. Only fields the file sets are
// copied, so flag values and defaults survive for everything else.
func (cf *File) ApplyTo(cfg *Config) error {
	if cf.BaseDomain != "" {
		cfg.BaseDomain = cf.BaseDomain
	}
	if cf.Endpoint != "" {
		cfg.Endpoint = cf.Endpoint
	}
	if cf.Listen != "" {
		cfg.ListenAddr = cf.Listen
	}
	if cf.Language != "" {
		cfg.Language = cf.Language
	}

	if cf.RedirectDelay != "" {
		d, err := time.ParseDuration(cf.RedirectDelay)
		if err != nil {
			return fmt.Errorf("parse redirectDelay: %w", err)
		}
		cfg.RedirectDelay = d
	}
	if cf.QueryTimeout != "" {
		d, err := time.ParseDuration(cf.QueryTimeout)
		if err != nil {
			return fmt.Errorf("parse queryTimeout: %w", err)
		}
		cfg.QueryTimeout = d
	}

	if cf.ResultLimit != 0 {
		cfg.ResultLimit = cf.ResultLimit
	}
	if cf.QueryRate != 0 {
		cfg.QueryRate = cf.QueryRate
	}
	if cf.UserAgent != "" {
		cfg.UserAgent = cf.UserAgent
	}

	if cf.History != nil {
		cfg.SaveHistory = *cf.History
	}
	if cf.HistoryDir != "" {
		cfg.DBDir = cf.HistoryDir
	}

	return nil
}
