package event_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/xraph/eventdesk/event"
)

func TestTypes(t *testing.T) {
	got := event.Types()
	want := []event.Type{"crosspromo", "liveops", "app", "ads"}
	if len(got) != len(want) {
		t.Fatalf("expected %d types, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("types[%d]: got %q, want %q", i, got[i], want[i])
		}
	}

	// Mutating the copy must not affect the enumeration.
	got[0] = "bogus"
	if event.Types()[0] != event.TypeCrossPromo {
		t.Fatal("Types() should return a copy")
	}
}

func TestParseType(t *testing.T) {
	if _, err := event.ParseType("liveops"); err != nil {
		t.Fatalf("parse liveops: %v", err)
	}
	if _, err := event.ParseType("newsletter"); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestEventJSONShape(t *testing.T) {
	raw := `{"id":7,"title":"T","description":"D","type":"app","priority":3,` +
		`"createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-02T00:00:00Z"}`

	var evt event.Event
	if err := json.Unmarshal([]byte(raw), &evt); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if evt.ID != 7 || evt.Type != event.TypeApp || evt.Priority != 3 {
		t.Fatalf("unexpected event: %+v", evt)
	}
	if evt.UpdatedAt.Day() != 2 {
		t.Fatalf("updatedAt not decoded: %v", evt.UpdatedAt)
	}

	out, err := json.Marshal(evt.Input())
	if err != nil {
		t.Fatalf("marshal input: %v", err)
	}
	if strings.Contains(string(out), "id") || strings.Contains(string(out), "createdAt") {
		t.Fatalf("input must not carry server fields: %s", out)
	}
}

func TestValidator(t *testing.T) {
	v := event.NewValidator()

	tests := []struct {
		name    string
		in      event.Input
		wantErr bool
	}{
		{
			name: "valid",
			in:   event.Input{Title: "T", Description: "D", Type: event.TypeLiveOps, Priority: 5},
		},
		{
			name:    "empty title",
			in:      event.Input{Title: "", Description: "D", Type: event.TypeApp, Priority: 1},
			wantErr: true,
		},
		{
			name:    "blank description",
			in:      event.Input{Title: "T", Description: "   ", Type: event.TypeApp, Priority: 1},
			wantErr: true,
		},
		{
			name:    "unknown type",
			in:      event.Input{Title: "T", Description: "D", Type: "newsletter", Priority: 1},
			wantErr: true,
		},
		{
			name:    "priority too low",
			in:      event.Input{Title: "T", Description: "D", Type: event.TypeAds, Priority: 0},
			wantErr: true,
		},
		{
			name:    "priority too high",
			in:      event.Input{Title: "T", Description: "D", Type: event.TypeAds, Priority: 11},
			wantErr: true,
		},
		{
			name: "priority upper bound",
			in:   event.Input{Title: "T", Description: "D", Type: event.TypeCrossPromo, Priority: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
