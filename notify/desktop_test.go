package notify

import (
	"context"
	"errors"
	"testing"
)

func TestDesktop(t *testing.T) {
	var gotTitle, gotMsg string
	var gotIcon any
	d := &Desktop{icon: "icon.png", send: func(title, message string, icon any) error {
		gotTitle, gotMsg, gotIcon = title, message, icon
		return nil
	}}

	if err := d.Notify(context.Background(), Error("Failed to fetch events")); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if gotTitle != "Error" || gotMsg != "Failed to fetch events" || gotIcon != "icon.png" {
		t.Fatalf("sent %q %q %v", gotTitle, gotMsg, gotIcon)
	}

	d.send = func(string, string, any) error { return errors.New("no dbus") }
	if err := d.Notify(context.Background(), Error("x")); err == nil || err.Error() != "notify: desktop: no dbus" {
		t.Fatalf("unexpected error: %v", err)
	}
}
