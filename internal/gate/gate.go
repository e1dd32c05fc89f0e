// Package gate runs engine operations through a fixed pipeline: latency
// recording around confirmation, execution and result normalization.
package gate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/leengari/primdb/internal/engine"
)

const (
	CancelledMessage = "Operation cancelled."
	errorPrefix      = "Error: "
	meterName        = "github.com/leengari/primdb/internal/gate"
)

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(action string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(action string) bool

func (f ConfirmFunc) Confirm(action string) bool {
	return f(action)
}

// AlwaysConfirm approves every action without asking.
var AlwaysConfirm Confirmer = ConfirmFunc(func(string) bool { return true })

// Op is one engine operation. Confirm, when set, is the action shown to the
// user, e.g. "drop table users".
type Op struct {
	Name    string
	Confirm string
	Run     func() (string, error)
}

// Result is what callers see: never an error, always a message.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Gate struct {
	mu        sync.RWMutex
	observers []Observer
	duration  metric.Float64Histogram
}

type Option func(*options)

type options struct {
	meterProvider metric.MeterProvider
}

// WithMeterProvider records latency through mp instead of the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// New creates a gate. Latency goes to the global meter provider unless
// WithMeterProvider is given; the global one is a no-op until an SDK is set.
func New(opts ...Option) *Gate {
	o := options{meterProvider: otel.GetMeterProvider()}
	for _, opt := range opts {
		opt(&o)
	}

	g := &Gate{}
	h, err := o.meterProvider.Meter(meterName).Float64Histogram("primdb.operation.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("Duration of gated engine operations"),
	)
	if err != nil {
		slog.Warn("operation histogram unavailable", slog.String("error", err.Error()))
	} else {
		g.duration = h
	}
	return g
}

func (g *Gate) AddObserver(o Observer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.observers = append(g.observers, o)
}

func (g *Gate) RemoveObserver(o Observer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, obs := range g.observers {
		if obs == o {
			g.observers = append(g.observers[:i], g.observers[i+1:]...)
			return
		}
	}
}

func (g *Gate) notify(event Event) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, o := range g.observers {
		o.OnEvent(event)
	}
}

// Do runs op. A nil confirmer declines every confirmation.
func (g *Gate) Do(ctx context.Context, confirmer Confirmer, op Op) Result {
	opID := uuid.NewString()
	start := time.Now()

	msg, err := g.run(confirmer, op)
	res := normalize(op, opID, msg, err)

	elapsed := time.Since(start)
	if g.duration != nil {
		g.duration.Record(ctx, float64(elapsed)/float64(time.Millisecond),
			metric.WithAttributes(
				attribute.String("op", op.Name),
				attribute.Bool("success", res.Success),
			),
		)
	}
	g.notify(Event{
		Op:        op.Name,
		OpID:      opID,
		Timestamp: start,
		Duration:  elapsed,
		Success:   res.Success,
	})
	return res
}

func (g *Gate) run(confirmer Confirmer, op Op) (msg string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", op.Name, r)
		}
	}()

	if op.Confirm != "" && (confirmer == nil || !confirmer.Confirm(op.Confirm)) {
		return "", engine.Cancelled(op.Confirm)
	}
	return op.Run()
}

func normalize(op Op, opID string, msg string, err error) Result {
	if err == nil {
		return Result{Success: true, Message: msg}
	}

	kind, known := engine.KindOf(err)
	switch {
	case known && kind == engine.KindUserCancelled:
		slog.Info("operation cancelled", slog.String("op", op.Name), slog.String("op_id", opID))
		return Result{Message: CancelledMessage}
	case known:
		slog.Debug("operation rejected",
			slog.String("op", op.Name),
			slog.String("op_id", opID),
			slog.String("kind", string(kind)),
		)
	default:
		slog.Error("operation failed",
			slog.String("op", op.Name),
			slog.String("op_id", opID),
			slog.String("error", err.Error()),
		)
	}
	return Result{Message: errorPrefix + err.Error()}
}
