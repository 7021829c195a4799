package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/twinlabs/twin/internal/calendar"
)

// Provider supplies today's raw calendar events
type Provider interface {
	IsAuthenticated() bool
	TodaysEvents(ctx context.Context) ([]calendar.RawEvent, error)
}

// Engine produces the live availability status
type Engine struct {
	provider Provider
	loc      *time.Location
	now      func() time.Time
}

// NewEngine creates an availability engine. loc is the user's timezone and
// drives the time-of-day energy overlay; active-meeting detection uses each
// event's own timezone independently.
func NewEngine(provider Provider, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{
		provider: provider,
		loc:      loc,
		now:      time.Now,
	}
}

// Status returns the current availability status. An unauthenticated provider
// yields the NotConnected sentinel, never an error; a provider fetch failure
// is returned as an error so callers can distinguish a collaborator outage.
func (e *Engine) Status(ctx context.Context) (Status, error) {
	if e.provider == nil || !e.provider.IsAuthenticated() {
		return NotConnected(), nil
	}

	raw, err := e.provider.TodaysEvents(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("fetch today's events: %w", err)
	}

	now := e.now()
	events := Normalize(raw, now)

	return Classify(events, now.In(e.loc).Hour()), nil
}
