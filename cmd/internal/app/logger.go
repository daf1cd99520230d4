package app

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/byte4ever/failsafe/cmd/internal/models"
)

// NewLogger builds the logger the CLI writes to w. An empty level means
// info; Verbose forces debug.
func NewLogger(w io.Writer, params *models.App) (*slog.Logger, error) {
	level := slog.LevelInfo

	switch {
	case params.Verbose:
		level = slog.LevelDebug
	case params.LogLevel != "":
		if err := level.UnmarshalText([]byte(params.LogLevel)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", params.LogLevel, err)
		}
	}

	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(params.LogFormat) {
	case "", models.LogFormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case models.LogFormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q: want %s or %s",
			params.LogFormat, models.LogFormatText, models.LogFormatJSON)
	}
}
