// Package event defines the Event record managed through the remote events API.
package event

import (
	"fmt"

	"github.com/xraph/eventdesk/internal/entity"
)

// Type is the categorical kind of an event. The set is closed.
type Type string

const (
	// TypeCrossPromo is a cross-promotion event.
	TypeCrossPromo Type = "crosspromo"

	// TypeLiveOps is a live-operations event.
	TypeLiveOps Type = "liveops"

	// TypeApp is an in-app event.
	TypeApp Type = "app"

	// TypeAds is an advertising event. Serving it requires ads authorization.
	TypeAds Type = "ads"
)

// Priority bounds, inclusive.
const (
	MinPriority = 1
	MaxPriority = 10
)

var types = []Type{TypeCrossPromo, TypeLiveOps, TypeApp, TypeAds}

// Types returns the fixed enumeration of event types in display order.
// The returned slice is a copy.
func Types() []Type {
	out := make([]Type, len(types))
	copy(out, types)
	return out
}

// Valid reports whether t is one of the known event types.
func (t Type) Valid() bool {
	for _, known := range types {
		if t == known {
			return true
		}
	}
	return false
}

// ParseType converts s into a Type, rejecting unknown values.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", fmt.Errorf("event: unknown type %q", s)
	}
	return t, nil
}

// Event is a manageable record. ID and timestamps are assigned by the backend.
type Event struct {
	// ID is the backend-assigned positive identifier.
	ID int64 `json:"id"`

	// Title is the short display name.
	Title string `json:"title"`

	// Description is the long-form text.
	Description string `json:"description"`

	// Type is the event category.
	Type Type `json:"type"`

	// Priority is an integer in [MinPriority, MaxPriority].
	Priority int `json:"priority"`

	entity.Entity
}

// Input is an Event without the server-assigned fields. It is the body of a create call.
type Input struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        Type   `json:"type"`
	Priority    int    `json:"priority"`
}

// Input returns the client-editable part of the event.
func (e *Event) Input() Input {
	return Input{
		Title:       e.Title,
		Description: e.Description,
		Type:        e.Type,
		Priority:    e.Priority,
	}
}

// Apply overwrites the client-editable fields of e with in.
func (e *Event) Apply(in Input) {
	e.Title = in.Title
	e.Description = in.Description
	e.Type = in.Type
	e.Priority = in.Priority
}

// Page is one listing response: the events on the requested page and the
// total number of matching events across all pages.
type Page struct {
	Events []Event `json:"events"`
	Total  int     `json:"total"`
}
