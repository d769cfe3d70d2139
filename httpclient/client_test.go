package httpclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/xraph/eventdesk/httpclient"
	"github.com/xraph/eventdesk/internal/apitest"
	"github.com/xraph/eventdesk/observability"
)

type staticIP struct {
	ip  string
	err error
}

func (s staticIP) EnsureIP(context.Context) (string, error) { return s.ip, s.err }

func TestDo_DefaultHeaders(t *testing.T) {
	srv := apitest.NewServer(t)
	c := httpclient.New(srv.URL, httpclient.WithIdentity(staticIP{ip: "198.51.100.4"}))

	if _, err := c.Do(context.Background(), "/events?page=1"); err != nil {
		t.Fatalf("Do: %v", err)
	}

	reqs := srv.RequestsTo("/events")
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	h := reqs[0].Header
	if got := h.Get("Content-Type"); got != "application/json" {
		t.Fatalf("Content-Type = %q", got)
	}
	if got := h.Get("Client-IP"); got != "198.51.100.4" {
		t.Fatalf("Client-IP = %q", got)
	}
	if got := h.Get("X-Request-ID"); !strings.HasPrefix(got, "req_") {
		t.Fatalf("X-Request-ID = %q, want req_ prefix", got)
	}
	if reqs[0].RawQuery != "page=1" {
		t.Fatalf("query = %q", reqs[0].RawQuery)
	}
}

func TestDo_CallerHeadersOverride(t *testing.T) {
	srv := apitest.NewServer(t)
	c := httpclient.New(srv.URL, httpclient.WithIdentity(staticIP{ip: "198.51.100.4"}))

	_, err := c.Do(context.Background(), "/events",
		httpclient.WithHeader("Content-Type", "text/plain"),
		httpclient.WithHeader("X-Trace", "abc"),
	)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	h := srv.Requests()[0].Header
	if got := h.Get("Content-Type"); got != "text/plain" {
		t.Fatalf("Content-Type = %q, want caller override", got)
	}
	if got := h.Get("X-Trace"); got != "abc" {
		t.Fatalf("X-Trace = %q", got)
	}
	if got := h.Get("Client-IP"); got != "198.51.100.4" {
		t.Fatalf("Client-IP = %q", got)
	}
}

func TestDo_IdentityFailureSendsEmptyIP(t *testing.T) {
	srv := apitest.NewServer(t)
	c := httpclient.New(srv.URL, httpclient.WithIdentity(staticIP{err: errors.New("lookup failed")}))

	if _, err := c.Do(context.Background(), "/events"); err != nil {
		t.Fatalf("Do: %v", err)
	}

	reqs := srv.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected request to be sent, got %d", len(reqs))
	}
	vals, ok := reqs[0].Header["Client-Ip"]
	if !ok || len(vals) != 1 || vals[0] != "" {
		t.Fatalf("Client-IP header = %v (present=%v), want empty value", vals, ok)
	}
}

func TestDo_PostBody(t *testing.T) {
	srv := apitest.NewServer(t)
	c := httpclient.New(srv.URL)

	raw, err := c.Do(context.Background(), "/events",
		httpclient.WithMethod(http.MethodPost),
		httpclient.WithBody(map[string]any{
			"title": "Launch", "description": "d", "type": "app", "priority": 3,
		}),
	)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["title"] != "Launch" || got["id"].(float64) != 1 {
		t.Fatalf("unexpected body: %v", got)
	}

	body := srv.Requests()[0].Body
	if !strings.Contains(string(body), `"priority":3`) {
		t.Fatalf("request body = %s", body)
	}
}

func TestDo_DeleteReturnsNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"deleted":true}`) //nolint:errcheck // test
	}))
	defer srv.Close()

	c := httpclient.New(srv.URL)
	raw, err := c.Do(context.Background(), "/events/1", httpclient.WithMethod(http.MethodDelete))
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if raw != nil {
		t.Fatalf("DELETE should return no body, got %s", raw)
	}
}

func TestDo_NonOKResponses(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantMsg   string
		wantKind  httpclient.Kind
		malformed bool
	}{
		{"server message", 500, `{"message":"DB down"}`, "DB down", httpclient.KindServer, false},
		{"not found", 404, `{"message":"Event not found"}`, "Event not found", httpclient.KindServer, false},
		{"unparseable body", 502, `<html>Bad Gateway</html>`, "Fetch error", httpclient.KindMalformedBody, true},
		{"missing message", 400, `{"error":"bad"}`, "Fetch error", httpclient.KindMalformedBody, true},
		{"empty body", 503, ``, "Fetch error", httpclient.KindMalformedBody, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := apitest.NewServer(t)
			srv.SetIntercept(apitest.Fail("/events", tt.status, tt.body))
			c := httpclient.New(srv.URL)

			_, err := c.Do(context.Background(), "/events")
			var apiErr *httpclient.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T (%v)", err, err)
			}
			if apiErr.StatusCode != tt.status {
				t.Fatalf("StatusCode = %d, want %d", apiErr.StatusCode, tt.status)
			}
			if apiErr.Error() != tt.wantMsg {
				t.Fatalf("message = %q, want %q", apiErr.Error(), tt.wantMsg)
			}
			if apiErr.Malformed != tt.malformed {
				t.Fatalf("Malformed = %v, want %v", apiErr.Malformed, tt.malformed)
			}
			if k := httpclient.Classify(err); k != tt.wantKind {
				t.Fatalf("Classify = %v, want %v", k, tt.wantKind)
			}
		})
	}
}

func TestDo_TransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := httpclient.New(url)
	_, err := c.Do(context.Background(), "/events")
	if err == nil {
		t.Fatal("expected error from closed server")
	}
	var apiErr *httpclient.APIError
	if errors.As(err, &apiErr) {
		t.Fatal("transport error must not be rewritten into APIError")
	}
	if k := httpclient.Classify(err); k != httpclient.KindTransport {
		t.Fatalf("Classify = %v, want transport", k)
	}
}

func TestDo_Canceled(t *testing.T) {
	srv := apitest.NewServer(t)
	c := httpclient.New(srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Do(ctx, "/events")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !httpclient.IsCanceled(err) {
		t.Fatal("IsCanceled should be true")
	}
}

func TestJSON_MalformedSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `not json`) //nolint:errcheck // test
	}))
	defer srv.Close()

	c := httpclient.New(srv.URL)
	var out map[string]any
	err := c.JSON(context.Background(), "/events/1", &out)
	if !errors.Is(err, httpclient.ErrMalformedBody) {
		t.Fatalf("expected ErrMalformedBody, got %v", err)
	}
	if k := httpclient.Classify(err); k != httpclient.KindMalformedBody {
		t.Fatalf("Classify = %v", k)
	}
}

func TestDo_RecordsMetrics(t *testing.T) {
	srv := apitest.NewServer(t)
	reg := prometheus.NewRegistry()
	c := httpclient.New(srv.URL,
		httpclient.WithMetrics(observability.NewMetrics(reg)),
		httpclient.WithTracer(observability.NewTracer()),
	)

	c.Do(context.Background(), "/events")     //nolint:errcheck // test
	c.Do(context.Background(), "/events/999") //nolint:errcheck // 404 expected

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() == "eventdesk_requests_total" {
			if n := len(f.GetMetric()); n != 2 {
				t.Fatalf("expected 2 status series, got %d", n)
			}
			return
		}
	}
	t.Fatal("eventdesk_requests_total not found")
}

func TestClassify_Nil(t *testing.T) {
	if k := httpclient.Classify(nil); k != httpclient.KindNone {
		t.Fatalf("Classify(nil) = %v", k)
	}
	if httpclient.KindMalformedBody.String() != "malformed_body" {
		t.Fatalf("String = %q", httpclient.KindMalformedBody.String())
	}
}
