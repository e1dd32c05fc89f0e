// Package storage persists the catalog and table records as JSON documents.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leengari/primdb/internal/domain/data"
	"github.com/leengari/primdb/internal/domain/schema"
)

const (
	DefaultMetaFile = "db_meta.json"
	sequencesFile   = "db_sequences.json"
	dataDirName     = "data"
)

// JSONStore keeps one metadata document and one JSON array per table:
//
//	<dir>/db_meta.json       {"users": [["ID","int"],["name","str"]]}
//	<dir>/db_sequences.json  {"users": 3}
//	<dir>/data/users.json    [{"ID": 1, "name": "Ann"}]
type JSONStore struct {
	dir      string
	metaPath string
}

// NewJSONStore prepares dir for use. metaFile defaults to DefaultMetaFile.
func NewJSONStore(dir, metaFile string) (*JSONStore, error) {
	if metaFile == "" {
		metaFile = DefaultMetaFile
	}
	if err := os.MkdirAll(filepath.Join(dir, dataDirName), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &JSONStore{dir: dir, metaPath: filepath.Join(dir, metaFile)}, nil
}

// DataDir is the directory holding one document per table.
func (s *JSONStore) DataDir() string {
	return filepath.Join(s.dir, dataDirName)
}

func (s *JSONStore) tablePath(table string) string {
	return filepath.Join(s.DataDir(), table+".json")
}

func (s *JSONStore) LoadMetadata() (schema.Snapshot, error) {
	snap := schema.NewSnapshot()
	if err := readJSON(s.metaPath, &snap.Tables); err != nil {
		return snap, fmt.Errorf("failed to read metadata: %w", err)
	}
	if err := readJSON(filepath.Join(s.dir, sequencesFile), &snap.Sequences); err != nil {
		return snap, fmt.Errorf("failed to read sequences: %w", err)
	}
	if snap.Tables == nil {
		snap.Tables = make(map[string][]schema.ColumnPair)
	}
	if snap.Sequences == nil {
		snap.Sequences = make(map[string]int64)
	}

	slog.Debug("metadata loaded",
		slog.String("path", s.metaPath),
		slog.Int("table_count", len(snap.Tables)),
	)
	return snap, nil
}

func (s *JSONStore) SaveMetadata(snap schema.Snapshot) error {
	if err := writeJSON(s.metaPath, snap.Tables); err != nil {
		return err
	}
	return writeJSON(filepath.Join(s.dir, sequencesFile), snap.Sequences)
}

func (s *JSONStore) LoadTableData(table string) ([]data.Record, error) {
	var records []data.Record
	if err := readJSON(s.tablePath(table), &records); err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", table, err)
	}
	return records, nil
}

func (s *JSONStore) SaveTableData(table string, records []data.Record) error {
	if records == nil {
		records = []data.Record{}
	}
	if err := writeJSON(s.tablePath(table), records); err != nil {
		return err
	}

	slog.Debug("table saved",
		slog.String("table", table),
		slog.Int("row_count", len(records)),
	)
	return nil
}

func (s *JSONStore) DropTableData(table string) error {
	err := os.Remove(s.tablePath(table))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// readJSON decodes path into v. A missing or empty file leaves v untouched.
func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return dec.Decode(v)
}

// writeJSON replaces path atomically with the indented encoding of v.
func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write temp file %s: %w", filepath.Base(tmpPath), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp → %s: %w", filepath.Base(path), err)
	}
	return nil
}
