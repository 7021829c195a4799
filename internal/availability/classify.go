package availability

import "fmt"

// Availability buckets
const (
	Open        = "open"
	Focused     = "focused"
	Busy        = "busy"
	WindingDown = "winding_down"
	Unknown     = "unknown"
)

// Energy estimates
const (
	EnergyHigh    = "high"
	EnergyMedium  = "medium"
	EnergyLow     = "low"
	EnergyUnknown = "unknown"
)

// Contact methods
const (
	ContactAsync          = "async"
	ContactQuickSync      = "quick_sync"
	ContactDeepDiscussion = "deep_discussion"
)

// Suggested wait times
const (
	WaitNow      = "now"
	WaitHalfHour = "30min"
	WaitEndOfDay = "end_of_day"
	WaitTomorrow = "tomorrow"
	WaitUnknown  = "unknown"
)

// Status is the derived availability record. It is recomputed on every
// request and never persisted.
type Status struct {
	Availability      string  `json:"availability"`
	EnergyEstimate    string  `json:"energy_estimate"`
	BestContactMethod string  `json:"best_contact_method"`
	SuggestedWaitTime string  `json:"suggested_wait_time"`
	ContextSummary    string  `json:"context_summary"`
	MeetingCount      int     `json:"meeting_count"`
	MeetingsRemaining int     `json:"meetings_remaining"`
	InMeeting         bool    `json:"in_meeting"`
	Events            []Event `json:"events"`
}

// NotConnected is the sentinel status returned when no calendar credential
// exists.
func NotConnected() Status {
	return Status{
		Availability:      Unknown,
		EnergyEstimate:    EnergyUnknown,
		BestContactMethod: ContactAsync,
		SuggestedWaitTime: WaitUnknown,
		ContextSummary:    "Calendar not connected. Connect Google Calendar for availability info.",
	}
}

// Classify derives an availability status from normalized events and the
// current hour in the user's timezone. Pure and deterministic.
//
// Meeting-load buckets: 0-2 meetings is a light day, 3-4 moderate, 5+ heavy.
// Being in a meeting right now wins over the count. The time-of-day overlay
// then adjusts energy, and from 16:00 replaces availability and summary
// entirely with the end-of-workday state.
func Classify(events []Event, hour int) Status {
	meetingCount := len(events)

	inMeeting := false
	remaining := 0
	for _, ev := range events {
		if ev.ActiveNow {
			inMeeting = true
		}
		if !ev.Past {
			remaining++
		}
	}

	var availability, contact, wait, summary string
	switch {
	case inMeeting:
		availability = Busy
		contact = ContactAsync
		wait = WaitHalfHour
		summary = "Currently in a meeting. Best to send an async message."
	case meetingCount == 0:
		availability = Open
		contact = ContactDeepDiscussion
		wait = WaitNow
		summary = "Calendar is clear today. Great time for a longer conversation."
	case meetingCount <= 2:
		availability = Open
		contact = ContactQuickSync
		wait = WaitNow
		summary = fmt.Sprintf("Light day with %d meeting(s). Good time to connect.", meetingCount)
	case meetingCount <= 4:
		availability = Focused
		contact = ContactQuickSync
		wait = WaitHalfHour
		summary = fmt.Sprintf("Moderate day with %d meetings. Quick sync is fine.", meetingCount)
	default:
		availability = Busy
		contact = ContactAsync
		wait = WaitEndOfDay
		summary = fmt.Sprintf("Heavy day with %d meetings. Async communication preferred.", meetingCount)
	}

	var energy string
	switch {
	case hour >= 9 && hour < 12:
		energy = EnergyHigh
		summary += " Morning energy is typically high."
	case hour >= 12 && hour < 14:
		energy = EnergyMedium
		summary += " Post-lunch energy dip."
	case hour >= 14 && hour < 16:
		energy = EnergyMedium
		summary += " Afternoon work mode."
	case hour >= 16:
		availability = WindingDown
		energy = EnergyLow
		summary = "End of workday. Best to reach out tomorrow morning."
	default:
		energy = EnergyMedium
	}

	return Status{
		Availability:      availability,
		EnergyEstimate:    energy,
		BestContactMethod: contact,
		SuggestedWaitTime: wait,
		ContextSummary:    summary,
		MeetingCount:      meetingCount,
		MeetingsRemaining: remaining,
		InMeeting:         inMeeting,
		Events:            events,
	}
}
