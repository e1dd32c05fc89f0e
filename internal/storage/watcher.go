package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to table documents made outside the engine, such
// as a user editing data/users.json by hand.
type Watcher struct {
	w   *fsnotify.Watcher
	dir string
}

// NewWatcher starts watching dir. Events are delivered once Run is called.
func NewWatcher(dir string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return &Watcher{w: w, dir: dir}, nil
}

// Run calls onChange with the table name for every write, creation, removal
// or rename of a table document, until ctx is done. It closes the watcher.
func (w *Watcher) Run(ctx context.Context, onChange func(table string)) error {
	defer func() { _ = w.w.Close() }()
	slog.Info("watching table documents", slog.String("dir", w.dir))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			table, ok := tableFromPath(ev.Name)
			if !ok {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				slog.Debug("table document changed", slog.String("table", table), slog.String("op", ev.Op.String()))
				onChange(table)
			}
		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", slog.Any("error", err))
		}
	}
}

// tableFromPath maps data/users.json to "users"; temp files are ignored.
func tableFromPath(path string) (string, bool) {
	base := filepath.Base(path)
	name, ok := strings.CutSuffix(base, ".json")
	if !ok || name == "" {
		return "", false
	}
	return name, true
}
