package notify

import (
	"context"
	"sync"
)

// Recorder keeps every notification in memory and offers them on a
// buffered channel. An interactive front end drains C; tests read All.
type Recorder struct {
	ch chan Notification

	mu  sync.Mutex
	all []Notification
}

var _ Notifier = (*Recorder)(nil)

// NewRecorder creates a recorder whose channel buffers size notifications.
// When the buffer is full, further notifications are kept in All but not
// offered on the channel.
func NewRecorder(size int) *Recorder {
	if size < 1 {
		size = 1
	}
	return &Recorder{ch: make(chan Notification, size)}
}

// Notify implements Notifier.
func (r *Recorder) Notify(_ context.Context, n Notification) error {
	r.mu.Lock()
	r.all = append(r.all, n)
	r.mu.Unlock()

	select {
	case r.ch <- n:
	default:
	}
	return nil
}

// C returns the notification channel.
func (r *Recorder) C() <-chan Notification { return r.ch }

// All returns a copy of every notification received.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.all))
	copy(out, r.all)
	return out
}

// Len returns the number of notifications received.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.all)
}
