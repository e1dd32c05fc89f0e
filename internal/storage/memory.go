package storage

import (
	"github.com/leengari/primdb/internal/domain/data"
	"github.com/leengari/primdb/internal/domain/schema"
)

// Memory keeps metadata and records in process. It copies on every load and
// save so callers cannot alias stored records, the same as a round trip
// through JSONStore.
type Memory struct {
	meta   schema.Snapshot
	tables map[string][]data.Record
	loads  map[string]int
}

func NewMemory() *Memory {
	return &Memory{
		meta:   schema.NewSnapshot(),
		tables: make(map[string][]data.Record),
		loads:  make(map[string]int),
	}
}

func (m *Memory) LoadMetadata() (schema.Snapshot, error) {
	snap := schema.NewSnapshot()
	for name, pairs := range m.meta.Tables {
		snap.Tables[name] = append([]schema.ColumnPair(nil), pairs...)
	}
	for name, id := range m.meta.Sequences {
		snap.Sequences[name] = id
	}
	return snap, nil
}

func (m *Memory) SaveMetadata(snap schema.Snapshot) error {
	m.meta = snap
	return nil
}

func (m *Memory) LoadTableData(table string) ([]data.Record, error) {
	m.loads[table]++
	return copyRecords(m.tables[table]), nil
}

func (m *Memory) SaveTableData(table string, records []data.Record) error {
	m.tables[table] = copyRecords(records)
	return nil
}

func (m *Memory) DropTableData(table string) error {
	delete(m.tables, table)
	return nil
}

// Loads reports how many times the records of table were read.
func (m *Memory) Loads(table string) int {
	return m.loads[table]
}

func copyRecords(records []data.Record) []data.Record {
	out := make([]data.Record, len(records))
	for i, r := range records {
		out[i] = r.Copy()
	}
	return out
}
