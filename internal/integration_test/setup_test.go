package integration

import (
	"context"
	"testing"

	"github.com/leengari/primdb/internal/engine"
	"github.com/leengari/primdb/internal/executor"
	"github.com/leengari/primdb/internal/gate"
	"github.com/leengari/primdb/internal/render"
	"github.com/leengari/primdb/internal/storage"
)

// openDB opens a file-backed executor on dir, as cmd/primdb does.
func openDB(t *testing.T, dir string) (*executor.Executor, *storage.JSONStore) {
	t.Helper()
	store, err := storage.NewJSONStore(dir, "")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	eng, err := engine.Open(store, store, render.Table{})
	if err != nil {
		t.Fatalf("failed to open engine: %v", err)
	}
	return executor.New(eng, gate.New()), store
}

// mustRun runs a command that is expected to succeed and returns its message.
func mustRun(t *testing.T, exec *executor.Executor, line string) string {
	t.Helper()
	res, _ := exec.ExecuteLine(context.Background(), line, gate.AlwaysConfirm)
	if !res.Success {
		t.Fatalf("%s: %s", line, res.Message)
	}
	return res.Message
}
