package calendar

import (
	"context"
	"fmt"
	"time"

	gcal "google.golang.org/api/calendar/v3"

	"github.com/twinlabs/twin/internal/storage"
)

// RawEvent is a provider event before normalization. Start and End carry the
// provider's own representation: an RFC3339 datetime for timed events, a
// YYYY-MM-DD date for all-day events.
type RawEvent struct {
	Title string
	Start string
	End   string
}

// Provider fetches today's events from the user's primary Google Calendar
type Provider struct {
	oauth  *OAuthClient
	tokens *storage.TokenStore
	loc    *time.Location
	now    func() time.Time
}

// NewProvider creates a calendar provider. loc defines the caller's local day
// boundary for "today".
func NewProvider(oauth *OAuthClient, tokens *storage.TokenStore, loc *time.Location) *Provider {
	if loc == nil {
		loc = time.Local
	}
	return &Provider{
		oauth:  oauth,
		tokens: tokens,
		loc:    loc,
		now:    time.Now,
	}
}

// IsAuthenticated reports whether a Google token is stored
func (p *Provider) IsAuthenticated() bool {
	if p.tokens == nil {
		return false
	}
	token, err := p.tokens.Load(storage.ProviderGoogle)
	return err == nil && token != nil
}

// TodaysEvents returns today's events from the primary calendar, midnight to
// midnight in the provider's configured location, in start-time order.
func (p *Provider) TodaysEvents(ctx context.Context) ([]RawEvent, error) {
	token, err := p.tokens.Load(storage.ProviderGoogle)
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	if token == nil {
		return nil, fmt.Errorf("not authenticated")
	}

	service, err := p.oauth.CalendarService(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	now := p.now().In(p.loc)
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, p.loc)
	endOfDay := startOfDay.Add(24 * time.Hour)

	result, err := service.Events.List("primary").
		Context(ctx).
		TimeMin(startOfDay.Format(time.RFC3339)).
		TimeMax(endOfDay.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	return convertItems(result.Items), nil
}

// convertItems maps Google Calendar items to raw events, preserving order
func convertItems(items []*gcal.Event) []RawEvent {
	events := make([]RawEvent, 0, len(items))

	for _, item := range items {
		ev := RawEvent{Title: item.Summary}
		if ev.Title == "" {
			ev.Title = "No title"
		}

		if item.Start != nil {
			if item.Start.DateTime != "" {
				ev.Start = item.Start.DateTime
			} else {
				ev.Start = item.Start.Date
			}
		}
		if item.End != nil {
			if item.End.DateTime != "" {
				ev.End = item.End.DateTime
			} else {
				ev.End = item.End.Date
			}
		}

		events = append(events, ev)
	}

	return events
}
