package schema

import "strings"

// TableSchema is the ordered column list of one table. Columns[0] is always ID:int.
type TableSchema struct {
	Name    string
	Columns []Column
	// LastID is the highest ID ever assigned in the table. IDs are not reused
	// after the record holding the maximum ID is deleted.
	LastID int64
}

// NewTableSchema prepends the ID column to the user-declared columns.
func NewTableSchema(name string, columns []Column) *TableSchema {
	cols := make([]Column, 0, len(columns)+1)
	cols = append(cols, Column{Name: IDColumn, Type: ColumnTypeInt})
	cols = append(cols, columns...)
	return &TableSchema{Name: name, Columns: cols}
}

// Column looks up a column by name.
func (s *TableSchema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// UserColumns returns every column except ID, in declaration order.
func (s *TableSchema) UserColumns() []Column {
	if len(s.Columns) == 0 {
		return nil
	}
	return s.Columns[1:]
}

// ColumnNames returns all column names in schema order.
func (s *TableSchema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Describe renders the columns as "ID:int, name:str, ...".
func (s *TableSchema) Describe() string {
	parts := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
