package gate

import (
	"log/slog"
	"time"
)

// Event describes one finished gated operation.
type Event struct {
	Op        string        // operation name, e.g. "insert"
	OpID      string        // unique per operation, for tracing across log lines
	Timestamp time.Time     // when the operation started
	Duration  time.Duration // confirmation + execution time
	Success   bool
}

// Observer receives an Event after every gated operation.
type Observer interface {
	OnEvent(event Event)
}

// LoggingObserver writes every event to slog at debug level.
type LoggingObserver struct {
	logger *slog.Logger
}

func NewLoggingObserver() *LoggingObserver {
	return &LoggingObserver{
		logger: slog.Default(),
	}
}

func (lo *LoggingObserver) OnEvent(event Event) {
	lo.logger.Debug("operation finished",
		slog.String("op", event.Op),
		slog.String("op_id", event.OpID),
		slog.Duration("duration", event.Duration),
		slog.Bool("success", event.Success),
	)
}
