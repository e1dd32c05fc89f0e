package data

import (
	"testing"

	"gotest.tools/assert"

	"github.com/leengari/primdb/internal/domain/schema"
)

func TestNormalizeRecord(t *testing.T) {
	ts := schema.NewTableSchema("users", []schema.Column{
		{Name: "name", Type: schema.ColumnTypeStr},
		{Name: "age", Type: schema.ColumnTypeInt},
		{Name: "active", Type: schema.ColumnTypeBool},
	})

	// shape produced by encoding/json
	decoded := Record{"ID": float64(2), "name": "Bo", "age": float64(25), "extra": "x"}
	got := Normalize(decoded, ts)

	assert.DeepEqual(t, got, Record{"ID": int64(2), "name": "Bo", "age": int64(25)})
	assert.Equal(t, got.ID(), int64(2))
	assert.Equal(t, got.Display("active"), "")
	assert.Equal(t, got.Display("age"), "25")
}

func TestMaxID(t *testing.T) {
	assert.Equal(t, MaxID(nil), int64(0))
	records := []Record{{"ID": int64(3)}, {"ID": int64(9)}, {"ID": int64(4)}}
	assert.Equal(t, MaxID(records), int64(9))
}

func TestCopyIsIndependent(t *testing.T) {
	r := Record{"ID": int64(1), "name": "Ann"}
	c := r.Copy()
	c["name"] = "Changed"
	assert.Equal(t, r["name"], "Ann")
}
