// Package executor maps parsed commands onto gated engine operations and
// serializes them, so the shell, the server and the file watcher can share
// one engine.
package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/leengari/primdb/internal/domain/schema"
	"github.com/leengari/primdb/internal/engine"
	"github.com/leengari/primdb/internal/gate"
	"github.com/leengari/primdb/internal/parser"
	"github.com/leengari/primdb/internal/parser/ast"
)

const ExitMessage = "Bye."

type Executor struct {
	mu   sync.Mutex
	eng  *engine.Engine
	gate *gate.Gate
}

func New(eng *engine.Engine, g *gate.Gate) *Executor {
	return &Executor{eng: eng, gate: g}
}

// ExecuteLine parses and runs one command line. exit is true for the exit
// command. Blank lines succeed with an empty message.
func (e *Executor) ExecuteLine(ctx context.Context, line string, confirmer gate.Confirmer) (res gate.Result, exit bool) {
	stmt, err := parser.ParseLine(line)
	if errors.Is(err, parser.ErrEmptyCommand) {
		return gate.Result{Success: true}, false
	}
	if err != nil {
		return parseFailure(err), false
	}
	if _, ok := stmt.(*ast.ExitStatement); ok {
		return gate.Result{Success: true, Message: ExitMessage}, true
	}
	return e.Execute(ctx, stmt, confirmer), false
}

// Execute runs one statement through the gate while holding the executor
// lock for the whole load → mutate → save → invalidate cycle.
func (e *Executor) Execute(ctx context.Context, stmt ast.Statement, confirmer gate.Confirmer) gate.Result {
	op, ok := e.operation(stmt)
	if !ok {
		return gate.Result{Message: fmt.Sprintf("Error: unsupported command %q", stmt.String())}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gate.Do(ctx, confirmer, op)
}

// Invalidate drops cached results of table, e.g. after an external edit.
func (e *Executor) Invalidate(table string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.eng.InvalidateTable(table)
}

func (e *Executor) operation(stmt ast.Statement) (gate.Op, bool) {
	switch s := stmt.(type) {
	case *ast.CreateTableStatement:
		return gate.Op{Name: "create_table", Run: func() (string, error) {
			return e.eng.CreateTable(s.Table, s.Columns)
		}}, true

	case *ast.DropTableStatement:
		return gate.Op{
			Name:    "drop_table",
			Confirm: fmt.Sprintf("drop table %q", s.Table),
			Run: func() (string, error) {
				return e.eng.DropTable(s.Table)
			},
		}, true

	case *ast.ListTablesStatement:
		return gate.Op{Name: "list_tables", Run: func() (string, error) {
			return e.eng.ListTables(), nil
		}}, true

	case *ast.InfoStatement:
		return gate.Op{Name: "info", Run: func() (string, error) {
			return e.eng.InfoTable(s.Table)
		}}, true

	case *ast.InsertStatement:
		return gate.Op{Name: "insert", Run: func() (string, error) {
			return e.eng.Insert(s.Table, s.Values)
		}}, true

	case *ast.SelectStatement:
		return gate.Op{Name: "select", Run: func() (string, error) {
			var cond *engine.Condition
			if s.Where != nil {
				cond = &engine.Condition{Column: s.Where.Column, Value: s.Where.Value}
			}
			return e.eng.Select(s.Table, cond)
		}}, true

	case *ast.UpdateStatement:
		return gate.Op{Name: "update", Run: func() (string, error) {
			return e.eng.Update(s.Table,
				engine.Assignment{Column: s.Set.Column, Value: s.Set.Value},
				engine.Condition{Column: s.Where.Column, Value: s.Where.Value},
			)
		}}, true

	case *ast.DeleteStatement:
		return gate.Op{
			Name:    "delete",
			Confirm: fmt.Sprintf("delete records from %q where %s", s.Table, s.Where.String()),
			Run: func() (string, error) {
				return e.eng.Delete(s.Table, engine.Condition{Column: s.Where.Column, Value: s.Where.Value})
			},
		}, true

	case *ast.HelpStatement:
		return gate.Op{Name: "help", Run: func() (string, error) {
			return HelpText(), nil
		}}, true
	}
	return gate.Op{}, false
}

func parseFailure(err error) gate.Result {
	var uc *parser.UnknownCommandError
	if errors.As(err, &uc) {
		return gate.Result{Message: fmt.Sprintf("Unknown command %q. Type help.", uc.Command)}
	}
	return gate.Result{Message: "Error: " + err.Error()}
}

var helpOrder = []struct {
	command string
	summary string
}{
	{"create_table", "create a table; types: " + schema.SupportedTypeNames()},
	{"drop_table", "drop a table and all its records"},
	{"list_tables", "list all tables"},
	{"info", "show columns and record count"},
	{"insert", "add a record; ID is assigned automatically"},
	{"select", "show records"},
	{"update", "change matching records"},
	{"delete", "remove matching records"},
	{"help", "show this help"},
	{"exit", "leave the shell"},
}

// HelpText lists every command with its syntax.
func HelpText() string {
	width := 0
	for _, h := range helpOrder {
		width = max(width, len(parser.Usage[h.command]))
	}

	var sb strings.Builder
	sb.WriteString("Commands:")
	for _, h := range helpOrder {
		fmt.Fprintf(&sb, "\n  %-*s  %s", width, parser.Usage[h.command], h.summary)
	}
	sb.WriteString("\nValues may be bare words or quoted with ' or \".")
	return sb.String()
}
