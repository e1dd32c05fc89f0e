package engine

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/leengari/primdb/internal/domain/schema"
)

// CreateTable registers a table whose columns are given as "name:type" specs.
// The ID column is prepended automatically.
func (e *Engine) CreateTable(name string, specs []string) (string, error) {
	if e.catalog.Has(name) {
		return "", alreadyExists(name)
	}

	cols, err := parseColumns(specs)
	if err != nil {
		return "", err
	}

	ts := schema.NewTableSchema(name, cols)
	e.catalog.Add(ts)
	if err := e.saveMetadata(); err != nil {
		e.catalog.Remove(name)
		return "", err
	}
	e.InvalidateTable(name)

	slog.Info("table created", slog.String("table", name), slog.String("columns", ts.Describe()))
	return fmt.Sprintf("Table %q created with columns: %s", name, ts.Describe()), nil
}

func parseColumns(specs []string) ([]schema.Column, error) {
	cols := make([]schema.Column, 0, len(specs))
	seen := map[string]bool{schema.IDColumn: true}

	for _, spec := range specs {
		name, typ, ok := strings.Cut(spec, ":")
		if !ok || name == "" {
			return nil, malformedColumn(spec, "")
		}
		if seen[name] {
			if name == schema.IDColumn {
				return nil, malformedColumn(spec, "ID is assigned automatically")
			}
			return nil, malformedColumn(spec, "duplicate column name")
		}
		t, ok := schema.ParseColumnType(typ)
		if !ok {
			return nil, unsupportedType(name, typ)
		}
		seen[name] = true
		cols = append(cols, schema.Column{Name: name, Type: t})
	}
	return cols, nil
}

// DropTable removes a table's schema and all of its records.
func (e *Engine) DropTable(name string) (string, error) {
	ts, err := e.lookup(name)
	if err != nil {
		return "", err
	}

	e.catalog.Remove(name)
	if err := e.saveMetadata(); err != nil {
		e.catalog.Add(ts)
		return "", err
	}
	e.InvalidateTable(name)

	if err := e.records.DropTableData(name); err != nil {
		return "", fmt.Errorf("failed to remove data of table %s: %w", name, err)
	}

	slog.Info("table dropped", slog.String("table", name))
	return fmt.Sprintf("Table %q dropped.", name), nil
}

// ListTables returns one "- name" line per table, sorted by name.
func (e *Engine) ListTables() string {
	names := e.catalog.Names()
	if len(names) == 0 {
		return NoTablesMessage
	}
	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = "- " + name
	}
	return strings.Join(lines, "\n")
}

// InfoTable describes a table's columns and record count.
func (e *Engine) InfoTable(name string) (string, error) {
	ts, err := e.lookup(name)
	if err != nil {
		return "", err
	}
	records, err := e.load(ts)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Table: %s\nColumns: %s\nRecords: %d", ts.Name, ts.Describe(), len(records)), nil
}

// Schema returns the column list of a table.
func (e *Engine) Schema(name string) ([]schema.Column, error) {
	ts, err := e.lookup(name)
	if err != nil {
		return nil, err
	}
	return append([]schema.Column(nil), ts.Columns...), nil
}
