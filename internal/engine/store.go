package engine

import (
	"github.com/leengari/primdb/internal/domain/data"
	"github.com/leengari/primdb/internal/domain/schema"
)

// MetadataStore persists the schema catalog.
type MetadataStore interface {
	// LoadMetadata returns an empty snapshot when nothing was saved yet.
	LoadMetadata() (schema.Snapshot, error)
	SaveMetadata(snap schema.Snapshot) error
}

// RecordStore persists the records of each table.
type RecordStore interface {
	// LoadTableData returns no records when the table was never saved.
	LoadTableData(table string) ([]data.Record, error)
	SaveTableData(table string, records []data.Record) error
	DropTableData(table string) error
}

// Renderer formats matching records for display, columns in schema order.
type Renderer interface {
	Render(columns []string, records []data.Record) string
}
