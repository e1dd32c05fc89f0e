package schema

import (
	"fmt"
	"strings"
)

// ColumnType is the declared type of a column.
type ColumnType string

const (
	ColumnTypeInt  ColumnType = "int"
	ColumnTypeStr  ColumnType = "str"
	ColumnTypeBool ColumnType = "bool"
)

// IDColumn is the synthetic auto-increment column every table starts with.
const IDColumn = "ID"

// SupportedTypes lists the accepted column types in display order.
var SupportedTypes = []ColumnType{ColumnTypeBool, ColumnTypeInt, ColumnTypeStr}

// ParseColumnType validates a declared type name.
func ParseColumnType(s string) (ColumnType, bool) {
	switch t := ColumnType(s); t {
	case ColumnTypeInt, ColumnTypeStr, ColumnTypeBool:
		return t, true
	}
	return "", false
}

// SupportedTypeNames returns the accepted type names joined for messages.
func SupportedTypeNames() string {
	names := make([]string, len(SupportedTypes))
	for i, t := range SupportedTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

func (c Column) String() string {
	return fmt.Sprintf("%s:%s", c.Name, c.Type)
}
