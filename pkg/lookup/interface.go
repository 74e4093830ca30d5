// Package lookup is the core: it owns the published dictionary, rebuilds it
// from sources and answers hover lookups against it.
package lookup

import (
	"time"

	"github.com/bastiangx/exdict/pkg/resolve"
	"github.com/bastiangx/exdict/pkg/source"
)

// IEngine defines the interface for dictionary lookup engines
type IEngine interface {
	// Resolve looks up a raw token, exact first then with one trailing character dropped
	Resolve(token string) (resolve.Result, bool)

	// Complete lists dictionary keys starting with prefix
	Complete(prefix string, limit int) []string

	// Load rebuilds the dictionary from descriptors and publishes it
	Load(descs []source.Descriptor) []source.Report

	// Stats returns statistics about the loaded dictionary
	Stats() Stats
}

// Reloader rebuilds the dictionary from the current configuration and
// returns the per-source reports plus the configured paths that are missing.
type Reloader func() (reports []source.Report, missing []string, err error)

// Stats summarizes the published dictionary and the last load.
type Stats struct {
	Entries       int
	Sources       int
	FailedSources int
	Replaced      int
	Loads         int
	LastLoad      time.Time
	LastDuration  time.Duration
}
