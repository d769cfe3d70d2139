package notify

import (
	"context"
	"fmt"

	"github.com/gen2brain/beeep"
)

// Desktop shows notifications as native desktop toasts.
type Desktop struct {
	icon string
	send func(title, message string, icon any) error
}

var _ Notifier = (*Desktop)(nil)

// NewDesktop creates a desktop notifier under the given application name.
// icon may be empty.
func NewDesktop(appName, icon string) *Desktop {
	if appName != "" {
		beeep.AppName = appName
	}
	return &Desktop{icon: icon, send: beeep.Notify}
}

// Notify implements Notifier.
func (d *Desktop) Notify(_ context.Context, n Notification) error {
	if err := d.send(n.Summary, n.Detail, d.icon); err != nil {
		return fmt.Errorf("notify: desktop: %w", err)
	}
	return nil
}
