package engine

import (
	"context"
	"log/slog"

	"github.com/leengari/memquery/internal/domain/errors"
)

// LoggingObserver is a simple observer that logs all events using structured logging.
// Query errors are logged at warn level, everything else at debug.
type LoggingObserver struct {
	logger *slog.Logger
}

// NewLoggingObserver creates a new logging observer (nil logger means slog.Default())
func NewLoggingObserver(logger *slog.Logger) *LoggingObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{logger: logger}
}

// OnEvent implements the Observer interface
func (lo *LoggingObserver) OnEvent(event Event) {
	level := slog.LevelDebug
	attrs := []slog.Attr{
		slog.String("event", string(event.Type)),
		slog.String("query_id", event.QueryID),
		slog.Duration("elapsed", event.Elapsed),
	}
	if event.Query != "" {
		attrs = append(attrs, slog.String("query", event.Query))
	}

	if err, ok := event.Data.(error); ok {
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("code", string(errors.CodeOf(err))),
			slog.String("error", err.Error()))
	} else if event.Data != nil {
		attrs = append(attrs, slog.Any("data", event.Data))
	}

	lo.logger.LogAttrs(context.Background(), level, "query_lifecycle", attrs...)
}
