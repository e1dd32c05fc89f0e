package gate

import (
	"context"
	"errors"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"gotest.tools/assert"

	"github.com/leengari/primdb/internal/engine"
	"github.com/leengari/primdb/internal/render"
	"github.com/leengari/primdb/internal/storage"
)

type mockObserver struct {
	events []Event
}

func (m *mockObserver) OnEvent(event Event) {
	m.events = append(m.events, event)
}

type recordingConfirmer struct {
	answer  bool
	actions []string
}

func (r *recordingConfirmer) Confirm(action string) bool {
	r.actions = append(r.actions, action)
	return r.answer
}

func TestDoSuccess(t *testing.T) {
	g := New()
	res := g.Do(context.Background(), nil, Op{
		Name: "list_tables",
		Run:  func() (string, error) { return "No tables.", nil },
	})
	assert.DeepEqual(t, res, Result{Success: true, Message: "No tables."})
}

func TestDoNormalizesEngineErrors(t *testing.T) {
	g := New()
	_, err := engineErr()
	res := g.Do(context.Background(), nil, Op{
		Name: "select",
		Run:  func() (string, error) { return "", err },
	})
	assert.Assert(t, !res.Success)
	assert.Equal(t, res.Message, `Error: table "ghosts" does not exist`)
}

func TestDoNormalizesUnexpectedErrors(t *testing.T) {
	g := New()
	res := g.Do(context.Background(), nil, Op{
		Name: "insert",
		Run:  func() (string, error) { return "", errors.New("disk full") },
	})
	assert.DeepEqual(t, res, Result{Success: false, Message: "Error: disk full"})
}

func TestDoRecoversPanics(t *testing.T) {
	g := New()
	res := g.Do(context.Background(), nil, Op{
		Name: "insert",
		Run:  func() (string, error) { panic("boom") },
	})
	assert.Assert(t, !res.Success)
	assert.Equal(t, res.Message, "Error: panic in insert: boom")
}

func TestConfirmation(t *testing.T) {
	tests := []struct {
		name      string
		confirmer *recordingConfirmer
		ran       bool
		expected  Result
	}{
		{"approved", &recordingConfirmer{answer: true}, true, Result{true, `Table "users" dropped.`}},
		{"declined", &recordingConfirmer{answer: false}, false, Result{false, CancelledMessage}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ran := false
			res := New().Do(context.Background(), tt.confirmer, Op{
				Name:    "drop_table",
				Confirm: "drop table users",
				Run: func() (string, error) {
					ran = true
					return `Table "users" dropped.`, nil
				},
			})
			assert.Equal(t, ran, tt.ran)
			assert.DeepEqual(t, res, tt.expected)
			assert.DeepEqual(t, tt.confirmer.actions, []string{"drop table users"})
		})
	}
}

func TestConfirmationSkippedForSafeOps(t *testing.T) {
	c := &recordingConfirmer{}
	res := New().Do(context.Background(), c, Op{
		Name: "insert",
		Run:  func() (string, error) { return "ok", nil },
	})
	assert.Assert(t, res.Success)
	assert.Equal(t, len(c.actions), 0)
}

func TestNilConfirmerDeclines(t *testing.T) {
	res := New().Do(context.Background(), nil, Op{
		Name:    "delete",
		Confirm: "delete records from users",
		Run:     func() (string, error) { t.Fatal("must not run"); return "", nil },
	})
	assert.Equal(t, res.Message, CancelledMessage)
}

func TestAlwaysConfirm(t *testing.T) {
	assert.Assert(t, AlwaysConfirm.Confirm("drop table users"))
}

func TestObservers(t *testing.T) {
	g := New()
	o1 := &mockObserver{}
	o2 := &mockObserver{}
	g.AddObserver(o1)
	g.AddObserver(o2)

	g.Do(context.Background(), nil, Op{Name: "list_tables", Run: func() (string, error) { return "", nil }})
	g.Do(context.Background(), nil, Op{Name: "insert", Run: func() (string, error) { return "", errors.New("x") }})

	assert.Equal(t, len(o1.events), 2)
	assert.Equal(t, len(o2.events), 2)
	assert.Equal(t, o1.events[0].Op, "list_tables")
	assert.Assert(t, o1.events[0].Success)
	assert.Assert(t, !o1.events[1].Success)
	assert.Assert(t, o1.events[0].OpID != "")
	assert.Assert(t, o1.events[0].OpID != o1.events[1].OpID)
	assert.Assert(t, !o1.events[0].Timestamp.IsZero())

	g.RemoveObserver(o2)
	g.Do(context.Background(), nil, Op{Name: "help", Run: func() (string, error) { return "", nil }})
	assert.Equal(t, len(o1.events), 3)
	assert.Equal(t, len(o2.events), 2)
}

func TestLoggingObserverDoesNotPanic(t *testing.T) {
	g := New()
	g.AddObserver(NewLoggingObserver())
	g.Do(context.Background(), nil, Op{Name: "help", Run: func() (string, error) { return "", nil }})
}

func engineErr() (string, error) {
	store := storage.NewMemory()
	eng, err := engine.Open(store, store, render.Table{})
	if err != nil {
		return "", err
	}
	return eng.Select("ghosts", nil)
}

func TestDurationHistogram(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	g := New(WithMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))))

	for i := 0; i < 3; i++ {
		g.Do(context.Background(), nil, Op{Name: "select", Run: func() (string, error) { return "", nil }})
	}

	var rm metricdata.ResourceMetrics
	assert.NilError(t, reader.Collect(context.Background(), &rm))

	var count uint64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "primdb.operation.duration" {
				continue
			}
			assert.Equal(t, m.Unit, "ms")
			hist, ok := m.Data.(metricdata.Histogram[float64])
			assert.Assert(t, ok, "unexpected data type %T", m.Data)
			for _, dp := range hist.DataPoints {
				count += dp.Count
			}
		}
	}
	assert.Equal(t, count, uint64(3))
}
