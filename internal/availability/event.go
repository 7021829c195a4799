// Package availability derives a discrete availability status from the
// user's calendar.
package availability

import (
	"strings"
	"time"

	"github.com/twinlabs/twin/internal/calendar"
)

// AllDay marks the start/end of all-day events
const AllDay = "All day"

// Event is a normalized calendar event. Start and End are wall-clock labels
// ("15:04"), AllDay, or the raw provider string when parsing failed.
type Event struct {
	Title     string `json:"title"`
	Start     string `json:"start"`
	End       string `json:"end"`
	ActiveNow bool   `json:"is_active_now"`
	Past      bool   `json:"is_past"`
}

// Normalize converts raw provider events into normalized events. Active/past
// checks compare against now converted into the event's own timezone, not the
// process's local zone; an event created in another zone would otherwise be
// misclassified. Parse failures pass the raw strings through with both flags
// false. Output order matches input order.
func Normalize(raw []calendar.RawEvent, now time.Time) []Event {
	events := make([]Event, 0, len(raw))

	for _, r := range raw {
		events = append(events, normalizeOne(r, now))
	}

	return events
}

func normalizeOne(r calendar.RawEvent, now time.Time) Event {
	ev := Event{Title: r.Title}

	// Date-only values have no "T"; those are all-day events
	if !strings.Contains(r.Start, "T") {
		ev.Start = AllDay
		ev.End = AllDay
		return ev
	}

	start, err := time.Parse(time.RFC3339, r.Start)
	if err != nil {
		ev.Start = r.Start
		ev.End = r.End
		return ev
	}
	end, err := time.Parse(time.RFC3339, r.End)
	if err != nil {
		ev.Start = r.Start
		ev.End = r.End
		return ev
	}

	nowThere := now.In(start.Location())

	ev.Start = start.Format("15:04")
	ev.End = end.Format("15:04")
	ev.ActiveNow = !nowThere.Before(start) && !nowThere.After(end)
	ev.Past = nowThere.After(end)

	return ev
}
