package availability

import (
	"testing"
	"time"

	"github.com/twinlabs/twin/internal/calendar"
)

func TestNormalize_TimedEvent(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name       string
		raw        calendar.RawEvent
		wantStart  string
		wantEnd    string
		wantActive bool
		wantPast   bool
	}{
		{
			name:       "currently active",
			raw:        calendar.RawEvent{Title: "Standup", Start: "2025-06-02T10:00:00Z", End: "2025-06-02T11:00:00Z"},
			wantStart:  "10:00",
			wantEnd:    "11:00",
			wantActive: true,
			wantPast:   false,
		},
		{
			name:      "already over",
			raw:       calendar.RawEvent{Title: "Breakfast", Start: "2025-06-02T08:00:00Z", End: "2025-06-02T09:00:00Z"},
			wantStart: "08:00",
			wantEnd:   "09:00",
			wantPast:  true,
		},
		{
			name:      "later today",
			raw:       calendar.RawEvent{Title: "Review", Start: "2025-06-02T15:00:00Z", End: "2025-06-02T16:00:00Z"},
			wantStart: "15:00",
			wantEnd:   "16:00",
		},
		{
			name:       "exactly at start boundary",
			raw:        calendar.RawEvent{Title: "Sync", Start: "2025-06-02T10:30:00Z", End: "2025-06-02T11:00:00Z"},
			wantStart:  "10:30",
			wantEnd:    "11:00",
			wantActive: true,
		},
		{
			name:       "exactly at end boundary",
			raw:        calendar.RawEvent{Title: "Sync", Start: "2025-06-02T10:00:00Z", End: "2025-06-02T10:30:00Z"},
			wantStart:  "10:00",
			wantEnd:    "10:30",
			wantActive: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := Normalize([]calendar.RawEvent{tt.raw}, now)
			if len(events) != 1 {
				t.Fatalf("got %d events, want 1", len(events))
			}
			ev := events[0]

			if ev.Title != tt.raw.Title {
				t.Errorf("Title = %q, want %q", ev.Title, tt.raw.Title)
			}
			if ev.Start != tt.wantStart {
				t.Errorf("Start = %q, want %q", ev.Start, tt.wantStart)
			}
			if ev.End != tt.wantEnd {
				t.Errorf("End = %q, want %q", ev.End, tt.wantEnd)
			}
			if ev.ActiveNow != tt.wantActive {
				t.Errorf("ActiveNow = %v, want %v", ev.ActiveNow, tt.wantActive)
			}
			if ev.Past != tt.wantPast {
				t.Errorf("Past = %v, want %v", ev.Past, tt.wantPast)
			}
		})
	}
}

func TestNormalize_CrossTimezone(t *testing.T) {
	// Process clock is UTC; the event carries a -07:00 offset. 17:30 UTC is
	// 10:30 in the event's zone, inside the 10:00-11:00 slot.
	now := time.Date(2025, 6, 2, 17, 30, 0, 0, time.UTC)

	events := Normalize([]calendar.RawEvent{{
		Title: "Coffee chat",
		Start: "2025-06-02T10:00:00-07:00",
		End:   "2025-06-02T11:00:00-07:00",
	}}, now)

	ev := events[0]
	if !ev.ActiveNow {
		t.Error("event should be active: now falls inside the slot in the event's own timezone")
	}
	if ev.Past {
		t.Error("event should not be past")
	}
	if ev.Start != "10:00" {
		t.Errorf("Start = %q, want wall-clock label in event timezone", ev.Start)
	}
}

func TestNormalize_AllDay(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	events := Normalize([]calendar.RawEvent{{
		Title: "Conference",
		Start: "2025-06-02",
		End:   "2025-06-03",
	}}, now)

	ev := events[0]
	if ev.Start != AllDay || ev.End != AllDay {
		t.Errorf("all-day event labels = %q/%q, want %q", ev.Start, ev.End, AllDay)
	}
	if ev.ActiveNow || ev.Past {
		t.Error("all-day events never count as active or past")
	}
}

func TestNormalize_ParseFailure(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  calendar.RawEvent
	}{
		{"garbage start", calendar.RawEvent{Title: "Odd", Start: "not-a-Time", End: "2025-06-02T11:00:00Z"}},
		{"garbage end", calendar.RawEvent{Title: "Odd", Start: "2025-06-02T10:00:00Z", End: "later"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Normalize([]calendar.RawEvent{tt.raw}, now)[0]

			if ev.Start != tt.raw.Start || ev.End != tt.raw.End {
				t.Errorf("raw strings should pass through unchanged, got %q/%q", ev.Start, ev.End)
			}
			if ev.ActiveNow || ev.Past {
				t.Error("unparseable events never count as active or past")
			}
		})
	}
}

func TestNormalize_PreservesOrder(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	raw := []calendar.RawEvent{
		{Title: "First", Start: "2025-06-02T09:00:00Z", End: "2025-06-02T09:30:00Z"},
		{Title: "Second", Start: "2025-06-02", End: "2025-06-03"},
		{Title: "Third", Start: "broken", End: "broken"},
	}

	events := Normalize(raw, now)

	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for i, want := range []string{"First", "Second", "Third"} {
		if events[i].Title != want {
			t.Errorf("event %d = %q, want %q", i, events[i].Title, want)
		}
	}
}

func TestNormalize_Empty(t *testing.T) {
	events := Normalize(nil, time.Now())
	if len(events) != 0 {
		t.Errorf("got %d events, want 0", len(events))
	}
}
