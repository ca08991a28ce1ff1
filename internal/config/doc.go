// Package config provides configuration structures and utilities for wikimark.
// It defines the main configuration options for token resolution, the query
// service client, the HTTP server, and report generation preferences.
package config
