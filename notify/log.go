package notify

import (
	"context"
	"log/slog"
)

// Log writes notifications to a structured logger.
type Log struct {
	logger *slog.Logger
}

var _ Notifier = (*Log)(nil)

// NewLog creates a Log notifier. A nil logger uses slog.Default().
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

// Notify implements Notifier.
func (l *Log) Notify(ctx context.Context, n Notification) error {
	l.logger.Log(ctx, level(n.Severity), n.Summary,
		"notification_id", n.ID.String(),
		"detail", n.Detail,
		"life_ms", n.LifeMillis(),
	)
	return nil
}

func level(s Severity) slog.Level {
	switch s {
	case SeverityError:
		return slog.LevelError
	case SeverityWarn:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
