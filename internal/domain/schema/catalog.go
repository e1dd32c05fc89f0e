package schema

import (
	"fmt"

	sorted "github.com/tobshub/go-sortedmap"
)

// ColumnPair is the persisted form of a column: [name, type].
type ColumnPair [2]string

// Snapshot is the persisted form of a Catalog.
type Snapshot struct {
	// Tables maps table name to its columns, ID first.
	Tables map[string][]ColumnPair
	// Sequences maps table name to the last assigned ID.
	Sequences map[string]int64
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() Snapshot {
	return Snapshot{
		Tables:    make(map[string][]ColumnPair),
		Sequences: make(map[string]int64),
	}
}

func catalogComparisonFunc(a, b *TableSchema) bool {
	return a.Name < b.Name
}

// Catalog is the in-memory schema store, kept ordered by table name.
// It is not safe for concurrent use.
type Catalog struct {
	tables *sorted.SortedMap[string, *TableSchema]
}

func NewCatalog() *Catalog {
	return &Catalog{tables: sorted.New[string, *TableSchema](0, catalogComparisonFunc)}
}

// CatalogFromSnapshot rebuilds a catalog from persisted metadata.
func CatalogFromSnapshot(snap Snapshot) (*Catalog, error) {
	c := NewCatalog()
	for name, pairs := range snap.Tables {
		if len(pairs) == 0 || pairs[0] != (ColumnPair{IDColumn, string(ColumnTypeInt)}) {
			return nil, fmt.Errorf("table %q: first column must be %s:%s", name, IDColumn, ColumnTypeInt)
		}
		cols := make([]Column, 0, len(pairs)-1)
		for _, p := range pairs[1:] {
			t, ok := ParseColumnType(p[1])
			if !ok {
				return nil, fmt.Errorf("table %q: column %q has unsupported type %q", name, p[0], p[1])
			}
			cols = append(cols, Column{Name: p[0], Type: t})
		}
		ts := NewTableSchema(name, cols)
		ts.LastID = snap.Sequences[name]
		c.Add(ts)
	}
	return c, nil
}

// Snapshot captures the catalog in its persisted form.
func (c *Catalog) Snapshot() Snapshot {
	snap := NewSnapshot()
	for _, ts := range c.All() {
		pairs := make([]ColumnPair, len(ts.Columns))
		for i, col := range ts.Columns {
			pairs[i] = ColumnPair{col.Name, string(col.Type)}
		}
		snap.Tables[ts.Name] = pairs
		if ts.LastID > 0 {
			snap.Sequences[ts.Name] = ts.LastID
		}
	}
	return snap
}

func (c *Catalog) Get(name string) (*TableSchema, bool) {
	return c.tables.Get(name)
}

func (c *Catalog) Has(name string) bool {
	_, ok := c.tables.Get(name)
	return ok
}

// Add registers a table. It returns false if the name is already taken.
func (c *Catalog) Add(ts *TableSchema) bool {
	return c.tables.Insert(ts.Name, ts)
}

// Remove drops a table. It returns false if the name is unknown.
func (c *Catalog) Remove(name string) bool {
	return c.tables.Delete(name)
}

func (c *Catalog) Len() int {
	return c.tables.Len()
}

// All returns every table schema ordered by name.
func (c *Catalog) All() []*TableSchema {
	iterCh, err := c.tables.IterCh()
	if err != nil {
		// empty map
		return nil
	}
	defer iterCh.Close()

	out := make([]*TableSchema, 0, c.tables.Len())
	for rec := range iterCh.Records() {
		out = append(out, rec.Val)
	}
	return out
}

// Names returns table names in lexicographic order.
func (c *Catalog) Names() []string {
	all := c.All()
	names := make([]string, len(all))
	for i, ts := range all {
		names[i] = ts.Name
	}
	return names
}
