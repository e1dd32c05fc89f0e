package data

import (
	"fmt"

	"github.com/leengari/primdb/internal/domain/schema"
)

// Record is a single table row.
// Key = column name, Value = int64, string or bool
type Record map[string]any

// Copy returns a shallow copy so callers cannot mutate stored records.
func (r Record) Copy() Record {
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// ID returns the record's ID column, or 0 when absent or malformed.
func (r Record) ID() int64 {
	v, ok := schema.Normalize(r[schema.IDColumn], schema.ColumnTypeInt)
	if !ok {
		return 0
	}
	return v.(int64)
}

// Display formats a column value for rendering; missing values are blank.
func (r Record) Display(column string) string {
	v, ok := r[column]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// Normalize converts every declared column of r to its schema type.
// Values that cannot be converted are kept as decoded; undeclared keys are dropped.
func Normalize(r Record, ts *schema.TableSchema) Record {
	out := make(Record, len(ts.Columns))
	for _, col := range ts.Columns {
		v, ok := r[col.Name]
		if !ok {
			continue
		}
		if n, ok := schema.Normalize(v, col.Type); ok {
			v = n
		}
		out[col.Name] = v
	}
	return out
}

// MaxID returns the largest ID among records, 0 for none.
func MaxID(records []Record) int64 {
	var highest int64
	for _, r := range records {
		if id := r.ID(); id > highest {
			highest = id
		}
	}
	return highest
}
