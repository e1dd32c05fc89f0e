// Package cache memoizes read results per table until that table is written.
package cache

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Key identifies one memoized read: a table plus an optional equality condition.
type Key struct {
	Table    string
	Filtered bool
	Column   string
	Value    string
}

// TableKey is the key of an unfiltered read of table.
func TableKey(table string) Key {
	return Key{Table: table}
}

// ConditionKey is the key of a read of table filtered by column = value.
func ConditionKey(table, column, value string) Key {
	return Key{Table: table, Filtered: true, Column: column, Value: value}
}

func (k Key) String() string {
	if !k.Filtered {
		return k.Table
	}
	return fmt.Sprintf("%s[%s=%s]", k.Table, k.Column, k.Value)
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits          int64
	Misses        int64
	Invalidations int64
}

type metrics struct {
	hits          atomic.Int64
	misses        atomic.Int64
	invalidations atomic.Int64
}

// Cache stores computed values by Key and keeps a per-table index of live keys
// so invalidating a table touches only that table's entries.
//
// Safe for concurrent use; compute functions run under the lock, so they must
// not call back into the cache.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[Key]V
	byTable map[string]map[Key]struct{}
	metrics metrics
}

func New[V any]() *Cache[V] {
	return &Cache[V]{
		entries: make(map[Key]V),
		byTable: make(map[string]map[Key]struct{}),
	}
}

// GetOrCompute returns the value stored under key, calling compute and storing
// its result on a miss. Errors from compute are returned and nothing is stored.
func (c *Cache[V]) GetOrCompute(key Key, compute func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.entries[key]; ok {
		c.metrics.hits.Add(1)
		return v, nil
	}
	c.metrics.misses.Add(1)

	v, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}

	c.entries[key] = v
	keys, ok := c.byTable[key.Table]
	if !ok {
		keys = make(map[Key]struct{})
		c.byTable[key.Table] = keys
	}
	keys[key] = struct{}{}
	return v, nil
}

// Invalidate removes every entry of table, whatever its condition.
// It returns the number of entries removed.
func (c *Cache[V]) Invalidate(table string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := c.byTable[table]
	for k := range keys {
		delete(c.entries, k)
	}
	delete(c.byTable, table)
	c.metrics.invalidations.Add(1)
	return len(keys)
}

// Len returns the number of live entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[V]) Stats() Stats {
	return Stats{
		Hits:          c.metrics.hits.Load(),
		Misses:        c.metrics.misses.Load(),
		Invalidations: c.metrics.invalidations.Load(),
	}
}
