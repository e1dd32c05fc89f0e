package ast

import (
	"strings"
)

// Statement is one parsed shell command. String renders it back in canonical
// command syntax, which parses to an equal statement.
type Statement interface {
	statementNode()
	String() string
}

// Condition is a column = value pair, used by where and set clauses.
type Condition struct {
	Column string
	Value  string
}

func (c Condition) String() string {
	return c.Column + " = " + quote(c.Value)
}

type CreateTableStatement struct {
	Table   string
	Columns []string // raw "name:type" specs
}

func (s *CreateTableStatement) statementNode() {}
func (s *CreateTableStatement) String() string {
	return "create_table " + s.Table + " " + strings.Join(s.Columns, " ")
}

type DropTableStatement struct {
	Table string
}

func (s *DropTableStatement) statementNode() {}
func (s *DropTableStatement) String() string { return "drop_table " + s.Table }

type ListTablesStatement struct{}

func (s *ListTablesStatement) statementNode() {}
func (s *ListTablesStatement) String() string { return "list_tables" }

type InfoStatement struct {
	Table string
}

func (s *InfoStatement) statementNode() {}
func (s *InfoStatement) String() string { return "info " + s.Table }

type InsertStatement struct {
	Table  string
	Values []string
}

func (s *InsertStatement) statementNode() {}
func (s *InsertStatement) String() string {
	quoted := make([]string, len(s.Values))
	for i, v := range s.Values {
		quoted[i] = quote(v)
	}
	return "insert into " + s.Table + " values (" + strings.Join(quoted, ", ") + ")"
}

type SelectStatement struct {
	Table string
	Where *Condition // nil selects every record
}

func (s *SelectStatement) statementNode() {}
func (s *SelectStatement) String() string {
	out := "select from " + s.Table
	if s.Where != nil {
		out += " where " + s.Where.String()
	}
	return out
}

type UpdateStatement struct {
	Table string
	Set   Condition
	Where Condition
}

func (s *UpdateStatement) statementNode() {}
func (s *UpdateStatement) String() string {
	return "update " + s.Table + " set " + s.Set.String() + " where " + s.Where.String()
}

type DeleteStatement struct {
	Table string
	Where Condition
}

func (s *DeleteStatement) statementNode() {}
func (s *DeleteStatement) String() string {
	return "delete from " + s.Table + " where " + s.Where.String()
}

type HelpStatement struct{}

func (s *HelpStatement) statementNode() {}
func (s *HelpStatement) String() string { return "help" }

type ExitStatement struct{}

func (s *ExitStatement) statementNode() {}
func (s *ExitStatement) String() string { return "exit" }

// quote wraps v in single quotes, or double quotes when v contains a single
// quote. Values holding both quote kinds cannot be written back.
func quote(v string) string {
	if strings.ContainsRune(v, '\'') {
		return `"` + v + `"`
	}
	return "'" + v + "'"
}
