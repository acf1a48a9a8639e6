package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes kit events to an slog.Logger.
// Useful for development when you want to see kit events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("source", event.Source.String()),
		slog.String("category", event.Category.String()),
	}

	// Add optional identifiers
	if event.KitID != "" {
		attrs = append(attrs, slog.String("kit_id", event.KitID))
	}
	if event.SessionID != "" {
		attrs = append(attrs, slog.String("session_id", event.SessionID))
	}
	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote_addr", event.RemoteAddr))
	}

	// Add type-specific attributes
	switch {
	case event.Pin != nil:
		attrs = append(attrs,
			slog.Uint64("pin", uint64(event.Pin.Pin)),
			slog.Uint64("old_level", uint64(event.Pin.OldLevel)),
			slog.Uint64("new_level", uint64(event.Pin.NewLevel)),
		)
	case event.Display != nil:
		attrs = append(attrs,
			slog.Int("line", event.Display.Line),
			slog.String("text", event.Display.Text),
		)
	case event.Sample != nil:
		attrs = append(attrs,
			slog.String("var", event.Sample.Var),
			slog.Int64("ts_ms", event.Sample.TimestampMS),
			slog.Float64("value", event.Sample.Value),
		)
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "kit", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
