package schema

import (
	"testing"

	"gotest.tools/assert"
)

func TestNewTableSchemaPrependsID(t *testing.T) {
	ts := NewTableSchema("users", []Column{
		{Name: "name", Type: ColumnTypeStr},
		{Name: "age", Type: ColumnTypeInt},
	})

	assert.Equal(t, ts.Columns[0], Column{Name: IDColumn, Type: ColumnTypeInt})
	assert.Equal(t, ts.Describe(), "ID:int, name:str, age:int")
	assert.DeepEqual(t, ts.ColumnNames(), []string{"ID", "name", "age"})
	assert.Equal(t, len(ts.UserColumns()), 2)

	col, ok := ts.Column("age")
	assert.Assert(t, ok)
	assert.Equal(t, col.Type, ColumnTypeInt)

	_, ok = ts.Column("missing")
	assert.Assert(t, !ok)
}

func TestCatalogOrdering(t *testing.T) {
	c := NewCatalog()
	assert.Equal(t, len(c.Names()), 0)

	for _, name := range []string{"users", "accounts", "orders"} {
		assert.Assert(t, c.Add(NewTableSchema(name, nil)))
	}
	assert.Assert(t, !c.Add(NewTableSchema("users", nil)), "duplicate name must be rejected")

	assert.DeepEqual(t, c.Names(), []string{"accounts", "orders", "users"})
	assert.Equal(t, c.Len(), 3)

	assert.Assert(t, c.Remove("orders"))
	assert.Assert(t, !c.Remove("orders"))
	assert.Assert(t, !c.Has("orders"))
	assert.DeepEqual(t, c.Names(), []string{"accounts", "users"})
}

func TestCatalogSnapshotRoundTrip(t *testing.T) {
	c := NewCatalog()
	users := NewTableSchema("users", []Column{{Name: "name", Type: ColumnTypeStr}, {Name: "active", Type: ColumnTypeBool}})
	users.LastID = 4
	c.Add(users)

	snap := c.Snapshot()
	assert.DeepEqual(t, snap.Tables["users"], []ColumnPair{{"ID", "int"}, {"name", "str"}, {"active", "bool"}})
	assert.Equal(t, snap.Sequences["users"], int64(4))

	restored, err := CatalogFromSnapshot(snap)
	assert.NilError(t, err)
	got, ok := restored.Get("users")
	assert.Assert(t, ok)
	assert.Equal(t, got.Describe(), users.Describe())
	assert.Equal(t, got.LastID, int64(4))
}

func TestCatalogFromSnapshotRejectsBadMetadata(t *testing.T) {
	snap := NewSnapshot()
	snap.Tables["t"] = []ColumnPair{{"name", "str"}}
	_, err := CatalogFromSnapshot(snap)
	assert.ErrorContains(t, err, "first column")

	snap = NewSnapshot()
	snap.Tables["t"] = []ColumnPair{{"ID", "int"}, {"price", "float"}}
	_, err = CatalogFromSnapshot(snap)
	assert.ErrorContains(t, err, "unsupported type")
}
