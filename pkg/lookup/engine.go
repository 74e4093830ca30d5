package lookup

import (
	"sync"
	"time"

	"github.com/bastiangx/exdict/internal/logger"
	"github.com/bastiangx/exdict/pkg/dictionary"
	"github.com/bastiangx/exdict/pkg/resolve"
	"github.com/bastiangx/exdict/pkg/source"
	"github.com/charmbracelet/log"
	"github.com/samber/lo"
)

// Engine wires the source loader, the dictionary store and the resolver.
//
// Loads are serialized; lookups never wait for a load and always see the
// last fully built dictionary.
type Engine struct {
	store    *dictionary.Store
	loader   *source.Loader
	resolver *resolve.Resolver
	sink     logger.Sink

	loadMu  sync.Mutex
	statsMu sync.RWMutex
	stats   Stats
}

var _ IEngine = (*Engine)(nil)

// NewEngine creates an engine with an empty dictionary.
func NewEngine(sink logger.Sink) *Engine {
	if sink == nil {
		sink = logger.Discard()
	}
	store := dictionary.NewStore()
	return &Engine{
		store:    store,
		loader:   source.NewLoader(sink),
		resolver: resolve.New(store, sink),
		sink:     sink,
	}
}

// Load builds a fresh dictionary from descs, in order, and swaps it in.
func (e *Engine) Load(descs []source.Descriptor) []source.Report {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()

	start := time.Now()
	builder := dictionary.NewBuilder()
	reports := e.loader.LoadAll(descs, builder)
	dict := builder.Build()
	e.store.Swap(dict)
	elapsed := time.Since(start)

	failed := lo.CountBy(reports, func(r source.Report) bool { return !r.OK() })

	e.statsMu.Lock()
	e.stats = Stats{
		Entries:       dict.Len(),
		Sources:       len(descs),
		FailedSources: failed,
		Replaced:      builder.Replaced(),
		Loads:         e.stats.Loads + 1,
		LastLoad:      dict.BuiltAt(),
		LastDuration:  elapsed,
	}
	e.statsMu.Unlock()

	level := log.InfoLevel
	if failed > 0 {
		level = log.WarnLevel
	}
	e.sink.Append(level, "dictionary ready",
		"entries", dict.Len(),
		"sources", len(descs),
		"failed", failed,
		"took", elapsed)
	return reports
}

// Resolve looks up a raw token.
func (e *Engine) Resolve(token string) (resolve.Result, bool) {
	return e.resolver.Resolve(token)
}

// Complete lists up to limit keys starting with the normalized prefix.
func (e *Engine) Complete(prefix string, limit int) []string {
	return e.store.Current().Keys(resolve.Normalize(prefix), limit)
}

// Stats returns statistics about the loaded dictionary
func (e *Engine) Stats() Stats {
	e.statsMu.RLock()
	defer e.statsMu.RUnlock()
	return e.stats
}
