package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes publication events to an slog.Logger.
// Useful for development when you want to see profile traffic in console.
type SlogAdapter struct {
	logger *slog.Logger
	level  slog.Level
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given
// slog.Logger at Debug level.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger, level: slog.LevelDebug}
}

// WithLevel returns a copy of the adapter logging successful events at level.
// Error events are always logged at Warn.
func (a *SlogAdapter) WithLevel(level slog.Level) *SlogAdapter {
	return &SlogAdapter{logger: a.logger, level: level}
}

// Log writes the event to the slog logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session_id", event.SessionID),
		slog.String("direction", event.Direction.String()),
		slog.String("kind", event.Kind.String()),
	}

	if event.LogicalDeviceID != "" {
		attrs = append(attrs, slog.String("device", event.LogicalDeviceID))
	}
	if event.MessageID != "" {
		attrs = append(attrs, slog.String("msg_id", event.MessageID))
	}
	if event.Size > 0 {
		attrs = append(attrs, slog.Int("size", event.Size))
	}

	level := a.level
	if event.Error != nil {
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("error_stage", event.Error.Stage.String()),
			slog.String("error_msg", event.Error.Message),
		)
	}

	a.logger.LogAttrs(context.Background(), level, "profile", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
