package executor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"gotest.tools/assert"

	"github.com/leengari/primdb/internal/engine"
	"github.com/leengari/primdb/internal/gate"
	"github.com/leengari/primdb/internal/render"
	"github.com/leengari/primdb/internal/storage"
)

func setupExecutor(t *testing.T) (*Executor, *storage.Memory) {
	t.Helper()
	store := storage.NewMemory()
	eng, err := engine.Open(store, store, render.Table{})
	assert.NilError(t, err)
	return New(eng, gate.New()), store
}

// run executes each line, failing the test on the first unsuccessful result.
func run(t *testing.T, exec *Executor, lines ...string) gate.Result {
	t.Helper()
	var res gate.Result
	for _, line := range lines {
		res, _ = exec.ExecuteLine(context.Background(), line, gate.AlwaysConfirm)
		assert.Assert(t, res.Success, "%s: %s", line, res.Message)
	}
	return res
}

func TestSessionScenario(t *testing.T) {
	exec, _ := setupExecutor(t)
	ctx := context.Background()

	steps := []struct {
		line     string
		success  bool
		expected string
	}{
		{"list_tables", true, "No tables."},
		{"create_table users name:str age:int", true, `Table "users" created with columns: ID:int, name:str, age:int`},
		{"create_table users x:str", false, `Error: table "users" already exists`},
		{"insert into users values ('Ann', 30)", true, `Record with ID=1 inserted into "users".`},
		{"insert into users values (Bo, 25)", true, `Record with ID=2 inserted into "users".`},
		{"insert into users values (Cy, old)", false, `Error: value "old" is not a valid int for column "age"`},
		{"insert into users values (Cy)", false, `Error: table "users" expects 2 values, got 1`},
		{"select from users where age = 30", true, "ID   name  age\n---  ---   ---\n1    Ann   30"},
		{"select from users where age = 99", true, "No records found."},
		{"update users set age = 31 where name = Ann", true, `Records with ID=1 in table "users" updated.`},
		{"update users set age = 31 where name = Zed", false, `Error: no records in table "users" match name = Zed`},
		{"delete from users where name = Bo", true, `Deleted 1 record(s) from table "users".`},
		{"info users", true, "Table: users\nColumns: ID:int, name:str, age:int\nRecords: 1"},
		{"list_tables", true, "- users"},
		{"drop_table users", true, `Table "users" dropped.`},
		{"drop_table users", false, `Error: table "users" does not exist`},
		{"select from users", false, `Error: table "users" does not exist`},
	}

	for _, s := range steps {
		res, exit := exec.ExecuteLine(ctx, s.line, gate.AlwaysConfirm)
		assert.Assert(t, !exit)
		assert.Equal(t, res.Success, s.success, s.line)
		assert.Equal(t, res.Message, s.expected, s.line)
	}
}

func TestParseFailures(t *testing.T) {
	exec, _ := setupExecutor(t)

	res, _ := exec.ExecuteLine(context.Background(), "frobnicate", gate.AlwaysConfirm)
	assert.DeepEqual(t, res, gate.Result{Message: `Unknown command "frobnicate". Type help.`})

	res, _ = exec.ExecuteLine(context.Background(), "drop_table", gate.AlwaysConfirm)
	assert.Assert(t, !res.Success)
	assert.Equal(t, res.Message, "Error: expected exactly one table name (usage: drop_table <name>)")

	res, _ = exec.ExecuteLine(context.Background(), "   ", gate.AlwaysConfirm)
	assert.DeepEqual(t, res, gate.Result{Success: true})
}

func TestExit(t *testing.T) {
	exec, _ := setupExecutor(t)
	res, exit := exec.ExecuteLine(context.Background(), "exit", nil)
	assert.Assert(t, exit)
	assert.Equal(t, res.Message, ExitMessage)
}

func TestHelp(t *testing.T) {
	exec, _ := setupExecutor(t)
	res := run(t, exec, "help")
	for _, cmd := range []string{"create_table", "drop_table", "list_tables", "info", "insert into", "select from", "update", "delete from", "exit"} {
		assert.Assert(t, strings.Contains(res.Message, cmd), "help is missing %s", cmd)
	}
	assert.Assert(t, strings.Contains(res.Message, "bool, int, str"))
}

func TestDestructiveCommandsAskFirst(t *testing.T) {
	exec, _ := setupExecutor(t)
	run(t, exec,
		"create_table users name:str",
		"insert into users values (Ann)",
	)

	var asked []string
	decline := gate.ConfirmFunc(func(action string) bool {
		asked = append(asked, action)
		return false
	})

	res, _ := exec.ExecuteLine(context.Background(), "delete from users where name = Ann", decline)
	assert.DeepEqual(t, res, gate.Result{Message: gate.CancelledMessage})
	res, _ = exec.ExecuteLine(context.Background(), "drop_table users", decline)
	assert.DeepEqual(t, res, gate.Result{Message: gate.CancelledMessage})

	assert.DeepEqual(t, asked, []string{
		`delete records from "users" where name = 'Ann'`,
		`drop table "users"`,
	})

	// nothing changed
	res = run(t, exec, "info users")
	assert.Assert(t, strings.HasSuffix(res.Message, "Records: 1"))
}

func TestConfirmationPrecedesExistenceCheck(t *testing.T) {
	exec, _ := setupExecutor(t)
	asked := 0
	confirmer := gate.ConfirmFunc(func(string) bool { asked++; return true })

	res, _ := exec.ExecuteLine(context.Background(), "drop_table ghosts", confirmer)
	assert.Equal(t, asked, 1)
	assert.Equal(t, res.Message, `Error: table "ghosts" does not exist`)
}

func TestSelectServedFromCache(t *testing.T) {
	exec, store := setupExecutor(t)
	run(t, exec,
		"create_table users name:str",
		"insert into users values (Ann)",
		"select from users",
	)
	loads := store.Loads("users")

	run(t, exec, "select from users", "select from users")
	assert.Equal(t, store.Loads("users"), loads)

	exec.Invalidate("users")
	run(t, exec, "select from users")
	assert.Equal(t, store.Loads("users"), loads+1)
}

func TestConcurrentCommandsAreSerialized(t *testing.T) {
	exec, _ := setupExecutor(t)
	run(t, exec, "create_table events n:int")

	const workers, perWorker = 8, 10
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				line := fmt.Sprintf("insert into events values (%d)", w*perWorker+i)
				res, _ := exec.ExecuteLine(context.Background(), line, nil)
				if !res.Success {
					t.Errorf("%s: %s", line, res.Message)
				}
			}
		}(w)
	}
	wg.Wait()

	res := run(t, exec, "info events")
	assert.Assert(t, strings.HasSuffix(res.Message, fmt.Sprintf("Records: %d", workers*perWorker)), res.Message)

	// every ID was handed out exactly once
	res = run(t, exec, fmt.Sprintf("select from events where ID = %d", workers*perWorker))
	assert.Assert(t, res.Message != "No records found.")
}
