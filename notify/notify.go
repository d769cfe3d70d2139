// Package notify delivers user-visible notifications: the side channel the
// list controller uses to report failed fetches.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/xraph/eventdesk/id"
	"github.com/xraph/eventdesk/observability"
)

// Severity is the visual weight of a notification.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarn    Severity = "warn"
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
)

// DefaultLife is how long a notification stays visible.
const DefaultLife = 3 * time.Second

// Notification is one message for the user.
type Notification struct {
	ID        id.ID         `json:"id"`
	Severity  Severity      `json:"severity"`
	Summary   string        `json:"summary"`
	Detail    string        `json:"detail"`
	Life      time.Duration `json:"-"`
	CreatedAt time.Time     `json:"createdAt"`
}

// LifeMillis returns Life in milliseconds.
func (n Notification) LifeMillis() int64 {
	return n.Life.Milliseconds()
}

// Error builds an error notification with the standard summary and life.
func Error(detail string) Notification {
	return Notification{
		ID:        id.NewNotificationID(),
		Severity:  SeverityError,
		Summary:   "Error",
		Detail:    detail,
		Life:      DefaultLife,
		CreatedAt: time.Now().UTC(),
	}
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, n Notification) error

// Notify calls f.
func (f Func) Notify(ctx context.Context, n Notification) error { return f(ctx, n) }

// Discard drops every notification.
var Discard Notifier = Func(func(context.Context, Notification) error { return nil })

// Multi fans a notification out to every notifier. All notifiers are
// called; their errors are joined.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, nt := range m {
		if err := nt.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Counted wraps next and counts notifications by severity.
func Counted(next Notifier, m *observability.Metrics) Notifier {
	if m == nil {
		return next
	}
	return Func(func(ctx context.Context, n Notification) error {
		m.NotificationsTotal.WithLabelValues(string(n.Severity)).Inc()
		return next.Notify(ctx, n)
	})
}
