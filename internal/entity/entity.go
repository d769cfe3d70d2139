// Package entity defines the server-assigned timestamps shared by eventdesk records.
package entity

import "time"

// Entity carries the backend-assigned creation and modification timestamps.
// Both are ISO-8601 on the wire and read-only from the client's perspective.
type Entity struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// New returns an Entity with both timestamps set to the current UTC time.
// Used by test backends that stand in for the server.
func New() Entity {
	now := time.Now().UTC()
	return Entity{CreatedAt: now, UpdatedAt: now}
}

// Touch advances UpdatedAt to the current UTC time.
func (e *Entity) Touch() {
	e.UpdatedAt = time.Now().UTC()
}
