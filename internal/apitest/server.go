// Package apitest provides an in-memory fake of the events API and the IP
// echo service for package tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xraph/eventdesk/event"
	"github.com/xraph/eventdesk/internal/entity"
)

// DefaultIP is the address the fake IP echo endpoint reports.
const DefaultIP = "203.0.113.7"

// Request is a request observed by the server.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

// URI returns the path with its query string.
func (r Request) URI() string {
	if r.RawQuery == "" {
		return r.Path
	}
	return r.Path + "?" + r.RawQuery
}

// Intercept may take over a request before the fake handles it. It returns
// true when it wrote a response.
type Intercept func(w http.ResponseWriter, r *http.Request) bool

// Server is a running fake API.
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	events        map[int64]*event.Event
	nextID        int64
	requests      []Request
	intercept     Intercept
	ip            string
	authorizeCode int

	mux    *http.ServeMux
	logger *slog.Logger
}

// NewServer starts a fake API and closes it when t finishes.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		events:        make(map[int64]*event.Event),
		nextID:        1,
		ip:            DefaultIP,
		authorizeCode: http.StatusOK,
		mux:           http.NewServeMux(),
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	s.registerRoutes()
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// IPServiceURL is the URL of the fake IP echo endpoint.
func (s *Server) IPServiceURL() string {
	return s.URL + "/ip?format=json"
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /ip", s.echoIP)
	s.mux.HandleFunc("GET /users/authorize", s.authorize)

	s.mux.HandleFunc("POST /events", s.createEvent)
	s.mux.HandleFunc("GET /events", s.listEvents)
	s.mux.HandleFunc("GET /events/{id}", s.getEvent)
	s.mux.HandleFunc("PATCH /events/{id}", s.updateEvent)
	s.mux.HandleFunc("DELETE /events/{id}", s.deleteEvent)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body.Close()
	r.Body = io.NopCloser(strings.NewReader(string(body)))

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method:   r.Method,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
		Header:   r.Header.Clone(),
		Body:     body,
	})
	hook := s.intercept
	s.mu.Unlock()

	s.logger.Debug("apitest request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)

	if hook != nil && hook(w, r) {
		return
	}
	s.mux.ServeHTTP(w, r)
}

// SetIntercept installs fn ahead of the fake handlers. Pass nil to remove it.
func (s *Server) SetIntercept(fn Intercept) {
	s.mu.Lock()
	s.intercept = fn
	s.mu.Unlock()
}

// SetIP changes the address reported by the IP echo endpoint.
func (s *Server) SetIP(ip string) {
	s.mu.Lock()
	s.ip = ip
	s.mu.Unlock()
}

// SetAuthorizeStatus sets the status /users/authorize answers with.
func (s *Server) SetAuthorizeStatus(code int) {
	s.mu.Lock()
	s.authorizeCode = code
	s.mu.Unlock()
}

// Requests returns a copy of every request seen so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestsTo returns the requests whose path starts with prefix.
func (s *Server) RequestsTo(prefix string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if strings.HasPrefix(r.Path, prefix) {
			out = append(out, r)
		}
	}
	return out
}

// Seed stores events directly and returns them with their assigned ids.
func (s *Server) Seed(inputs ...event.Input) []event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]event.Event, 0, len(inputs))
	for _, in := range inputs {
		e := s.insert(in)
		out = append(out, *e)
	}
	return out
}

// Event returns the stored event with the given id.
func (s *Server) Event(id int64) (event.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return event.Event{}, false
	}
	return *e, true
}

func (s *Server) insert(in event.Input) *event.Event {
	e := &event.Event{
		ID:     s.nextID,
		Entity: entity.New(),
	}
	e.Apply(in)
	s.events[e.ID] = e
	s.nextID++
	return e
}

// ──────────────────────────────────────────────────
// Handlers
// ──────────────────────────────────────────────────

func (s *Server) echoIP(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	ip := s.ip
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"ip": ip})
}

func (s *Server) authorize(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	code := s.authorizeCode
	s.mu.Unlock()

	if r.URL.Query().Get("ip") == "" {
		writeError(w, http.StatusBadRequest, "ip is required")
		return
	}
	if code >= 300 {
		writeError(w, code, "not authorized")
		return
	}
	writeJSON(w, code, map[string]bool{"authorized": true})
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	var in event.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := check(in); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	s.mu.Lock()
	e := *s.insert(in)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := atoi(q.Get("page"), 1)
	perPage := atoi(q.Get("perPage"), 10)
	typ := q.Get("type")
	search := strings.ToLower(q.Get("search"))
	orderBy := q.Get("orderBy")
	desc := strings.EqualFold(q.Get("orderDirection"), "DESC")

	s.mu.Lock()
	matched := make([]event.Event, 0, len(s.events))
	for _, e := range s.events {
		if typ != "" && string(e.Type) != typ {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(e.Title), search) &&
			!strings.Contains(strings.ToLower(e.Description), search) {
			continue
		}
		matched = append(matched, *e)
	}
	s.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if desc {
			return lessBy(orderBy, matched[j], matched[i])
		}
		return lessBy(orderBy, matched[i], matched[j])
	})

	total := len(matched)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	writeJSON(w, http.StatusOK, event.Page{Events: matched[start:end], Total: total})
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, found := s.Event(id)
	if !found {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in event.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := check(in); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	s.mu.Lock()
	e, found := s.events[id]
	if found {
		e.Apply(in)
		e.Touch()
	}
	var out event.Event
	if found {
		out = *e
	}
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	_, found := s.events[id]
	delete(s.events, id)
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func check(in event.Input) string {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return "title is required"
	case strings.TrimSpace(in.Description) == "":
		return "description is required"
	case !in.Type.Valid():
		return fmt.Sprintf("invalid type %q", in.Type)
	case in.Priority < event.MinPriority || in.Priority > event.MaxPriority:
		return "priority must be between 1 and 10"
	}
	return ""
}

func lessBy(field string, a, b event.Event) bool {
	switch field {
	case "title":
		return a.Title < b.Title
	case "type":
		return a.Type < b.Type
	case "priority":
		return a.Priority < b.Priority
	case "createdAt":
		return a.CreatedAt.Before(b.CreatedAt)
	default:
		return a.ID < b.ID
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return 0, false
	}
	return id, true
}

func atoi(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best effort
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// Delay returns an Intercept that sleeps d before letting the fake answer.
func Delay(d time.Duration) Intercept {
	return func(http.ResponseWriter, *http.Request) bool {
		time.Sleep(d)
		return false
	}
}

// Fail returns an Intercept answering every request whose path starts with
// prefix with status and a raw body.
func Fail(prefix string, status int, body string) Intercept {
	return func(w http.ResponseWriter, r *http.Request) bool {
		if !strings.HasPrefix(r.URL.Path, prefix) {
			return false
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body) //nolint:errcheck // best effort
		return true
	}
}
