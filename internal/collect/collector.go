// Package collect gathers League of Legends documents from pluggable sources.
//
// Each source implements Collector. The Aggregator runs every enabled source,
// tolerates individual failures, and guarantees a non-empty result by falling
// back to the built-in sample corpus.
package collect

import (
	"context"
	"errors"
)

// Metadata keys used across collectors.
const (
	MetaType     = "type"
	MetaSource   = "source"
	MetaChampion = "champion"
	MetaRole     = "role"
	MetaVersion  = "version"
)

// ErrNotConfigured is returned by Validate when a collector is missing
// required credentials or settings.
var ErrNotConfigured = errors.New("collector not configured")

// Document is a unit of collected knowledge, ready for chunking.
type Document struct {
	// Content is the document text.
	Content string

	// Metadata describes provenance: type, source, champion, role, version.
	Metadata map[string]any
}

// Collector fetches documents from one source.
type Collector interface {
	// Collect fetches all documents from this source.
	Collect(ctx context.Context) ([]Document, error)

	// Name identifies the source ("DataDragon", "WikiScrape", ...).
	Name() string

	// Validate reports whether the collector can run (API keys present, ...).
	Validate() error
}
