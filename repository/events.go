// Package repository provides the event CRUD operations over the events API.
// Calls are pass-through: no retries, no caching and no validation.
package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/xraph/eventdesk/event"
	"github.com/xraph/eventdesk/httpclient"
)

// EventsPath is the collection route.
const EventsPath = "/events"

// Requester sends a request and decodes the JSON response. *httpclient.Client
// satisfies it.
type Requester interface {
	Do(ctx context.Context, path string, opts ...httpclient.RequestOption) (json.RawMessage, error)
	JSON(ctx context.Context, path string, out any, opts ...httpclient.RequestOption) error
}

// Events is the contract of an event repository. The journal decorates it.
type Events interface {
	Create(ctx context.Context, in event.Input) (*event.Event, error)
	Get(ctx context.Context, id int64) (*event.Event, error)
	Update(ctx context.Context, e *event.Event) (*event.Event, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, query string) (*event.Page, error)
}

// Repository implements Events against the remote API.
type Repository struct {
	api Requester
}

var _ Events = (*Repository)(nil)

// New creates a repository.
func New(api Requester) *Repository {
	return &Repository{api: api}
}

// Create sends POST /events and returns the stored event.
func (r *Repository) Create(ctx context.Context, in event.Input) (*event.Event, error) {
	var out event.Event
	err := r.api.JSON(ctx, EventsPath, &out,
		httpclient.WithMethod(http.MethodPost),
		httpclient.WithBody(in),
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches one event. A missing event surfaces as *httpclient.APIError.
func (r *Repository) Get(ctx context.Context, id int64) (*event.Event, error) {
	var out event.Event
	if err := r.api.JSON(ctx, eventPath(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update sends the full record with PATCH /events/{id}.
func (r *Repository) Update(ctx context.Context, e *event.Event) (*event.Event, error) {
	var out event.Event
	err := r.api.JSON(ctx, eventPath(e.ID), &out,
		httpclient.WithMethod(http.MethodPatch),
		httpclient.WithBody(e),
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes an event. It does not refresh any listing.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	_, err := r.api.Do(ctx, eventPath(id), httpclient.WithMethod(http.MethodDelete))
	return err
}

// List fetches one page. query is an encoded query string without the
// leading "?"; an empty query lists with server defaults.
func (r *Repository) List(ctx context.Context, query string) (*event.Page, error) {
	path := EventsPath
	if query != "" {
		path += "?" + query
	}
	var out event.Page
	if err := r.api.JSON(ctx, path, &out); err != nil {
		return nil, err
	}
	if out.Events == nil {
		out.Events = []event.Event{}
	}
	return &out, nil
}

func eventPath(id int64) string {
	return EventsPath + "/" + strconv.FormatInt(id, 10)
}
