// Package journal keeps a local record of every mutation attempted through
// the event repository.
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/eventdesk/id"
)

// Action is the kind of mutation.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ParseAction validates s.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return a, nil
	}
	return "", fmt.Errorf("journal: unknown action %q", s)
}

// Entry records one mutation attempt.
type Entry struct {
	ID      id.ID  `json:"id"`
	Action  Action `json:"action"`
	EventID int64  `json:"eventId,omitempty"` // zero for a failed create
	Title   string `json:"title,omitempty"`
	IP      string `json:"ip,omitempty"`
	// Error is the failure message; empty when the mutation succeeded.
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Succeeded reports whether the mutation went through.
func (e *Entry) Succeeded() bool { return e.Error == "" }

// ListOpts filters and paginates List.
type ListOpts struct {
	// Action restricts results to one action; empty means all.
	Action Action
	Offset int
	// Limit caps the result size; zero or less means no cap.
	Limit int
}

// Store persists journal entries.
type Store interface {
	// Append stores a new entry.
	Append(ctx context.Context, e *Entry) error

	// List returns entries newest first.
	List(ctx context.Context, opts ListOpts) ([]*Entry, error)

	// Get returns one entry.
	Get(ctx context.Context, entryID id.ID) (*Entry, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int64, error)
}
