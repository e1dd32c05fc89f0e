package engine

import (
	"fmt"
	"log/slog"

	"github.com/leengari/primdb/internal/cache"
	"github.com/leengari/primdb/internal/domain/data"
	"github.com/leengari/primdb/internal/domain/schema"
)

const (
	NoTablesMessage  = "No tables."
	NoRecordsMessage = "No records found."
)

// Engine implements table and record operations on top of a metadata store,
// a record store and a renderer. Every operation is a complete
// load → mutate → save → invalidate cycle.
//
// Engine is not safe for concurrent use; callers serialize operations.
type Engine struct {
	catalog  *schema.Catalog
	meta     MetadataStore
	records  RecordStore
	renderer Renderer
	results  *cache.Cache[string]
}

type Option func(*Engine)

// WithoutCache disables memoization of select results.
func WithoutCache() Option {
	return func(e *Engine) {
		e.results = nil
	}
}

// Open restores the catalog from meta and returns a ready engine.
func Open(meta MetadataStore, records RecordStore, renderer Renderer, opts ...Option) (*Engine, error) {
	snap, err := meta.LoadMetadata()
	if err != nil {
		return nil, fmt.Errorf("failed to load metadata: %w", err)
	}
	catalog, err := schema.CatalogFromSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to restore catalog: %w", err)
	}

	e := &Engine{
		catalog:  catalog,
		meta:     meta,
		records:  records,
		renderer: renderer,
		results:  cache.New[string](),
	}
	for _, opt := range opts {
		opt(e)
	}

	slog.Debug("engine opened",
		slog.Int("table_count", catalog.Len()),
		slog.Bool("cache", e.results != nil),
	)
	return e, nil
}

// InvalidateTable drops cached results of table. Writes through the engine
// do this already; it exists for changes made behind the engine's back.
func (e *Engine) InvalidateTable(table string) {
	if e.results == nil {
		return
	}
	if n := e.results.Invalidate(table); n > 0 {
		slog.Debug("cache invalidated", slog.String("table", table), slog.Int("entries", n))
	}
}

// CacheStats reports result cache counters; zero when the cache is disabled.
func (e *Engine) CacheStats() cache.Stats {
	if e.results == nil {
		return cache.Stats{}
	}
	return e.results.Stats()
}

// Tables returns the names of all tables in lexicographic order.
func (e *Engine) Tables() []string {
	return e.catalog.Names()
}

func (e *Engine) lookup(table string) (*schema.TableSchema, error) {
	ts, ok := e.catalog.Get(table)
	if !ok {
		return nil, notFound(table)
	}
	return ts, nil
}

func (e *Engine) cached(key cache.Key, compute func() (string, error)) (string, error) {
	if e.results == nil {
		return compute()
	}
	return e.results.GetOrCompute(key, compute)
}

// load reads the records of ts with values normalized to their column types.
func (e *Engine) load(ts *schema.TableSchema) ([]data.Record, error) {
	raw, err := e.records.LoadTableData(ts.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to load table %s: %w", ts.Name, err)
	}
	records := make([]data.Record, len(raw))
	for i, r := range raw {
		records[i] = data.Normalize(r, ts)
	}
	return records, nil
}

func (e *Engine) save(ts *schema.TableSchema, records []data.Record) error {
	if err := e.records.SaveTableData(ts.Name, records); err != nil {
		return fmt.Errorf("failed to save table %s: %w", ts.Name, err)
	}
	e.InvalidateTable(ts.Name)
	return nil
}

func (e *Engine) saveMetadata() error {
	if err := e.meta.SaveMetadata(e.catalog.Snapshot()); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}
	return nil
}
