package engine

import (
	"github.com/leengari/primdb/internal/domain/data"
	"github.com/leengari/primdb/internal/domain/schema"
)

// Condition is a single column = value equality test. Value is raw text and
// is coerced with the column's declared type before comparing.
type Condition struct {
	Column string
	Value  string
}

// Assignment is the column = value pair of an update's set clause.
type Assignment = Condition

// matches reports whether r has the column and its stored value equals the
// coerced condition value. A value that does not coerce never matches.
func (c Condition) matches(r data.Record, ts *schema.TableSchema) bool {
	stored, ok := r[c.Column]
	if !ok {
		return false
	}
	col, ok := ts.Column(c.Column)
	if !ok {
		return false
	}
	want, err := schema.Coerce(c.Value, col.Type)
	if err != nil {
		return false
	}
	return equal(stored, want)
}

func equal(stored, want any) bool {
	switch w := want.(type) {
	case int64:
		s, ok := stored.(int64)
		return ok && s == w
	case string:
		s, ok := stored.(string)
		return ok && s == w
	case bool:
		s, ok := stored.(bool)
		return ok && s == w
	}
	return false
}
