package failsafe

import (
	"context"
	"log/slog"

	"github.com/go-logr/logr"
)

// LogHooks returns Hooks that write one warning record per retried
// failure to logger. Successful attempts, exhausting failures and
// ineligible failures are not logged. A nil logger yields empty Hooks.
func LogHooks(logger *slog.Logger) Hooks {
	if logger == nil {
		return Hooks{}
	}

	return Hooks{
		OnRetry: func(ev RetryEvent) {
			logger.LogAttrs(
				context.Background(),
				slog.LevelWarn,
				"operation failed, will retry",
				slog.String("operation", ev.Operation),
				slog.Int("attempt", ev.Attempt),
				slog.Int("max_retries", ev.MaxRetries),
				slog.Duration("delay", ev.Delay),
				slog.Any("error", ev.Err),
			)
		},
	}
}

// discardLogger drops every record.
func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// slogFromLogr adapts a logr sink. logr has no warning level; records
// arrive through the sink's Info path at V(0).
func slogFromLogr(l logr.Logger) *slog.Logger {
	if l.GetSink() == nil {
		return discardLogger()
	}

	return slog.New(logr.ToSlogHandler(l))
}
