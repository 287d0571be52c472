package catalog

import (
	"context"
	"fmt"
	"sort"

	"tikiti/internal/shared/apperr"
)

// Provider is the read-only source of events
type Provider interface {
	// ListEvents returns every event ordered by start time ascending
	ListEvents(ctx context.Context) ([]Event, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
}

// StaticProvider serves a fixed, in-memory catalog
type StaticProvider struct {
	events []Event
}

// NewStaticProvider validates and orders events once up front
func NewStaticProvider(events []Event) (*StaticProvider, error) {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	for i := range sorted {
		if err := sorted[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid catalog: %w", err)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartsAt.Before(sorted[j].StartsAt)
	})
	return &StaticProvider{events: sorted}, nil
}

func (p *StaticProvider) ListEvents(ctx context.Context) ([]Event, error) {
	out := make([]Event, len(p.events))
	for i := range p.events {
		out[i] = cloneEvent(p.events[i])
	}
	return out, nil
}

func (p *StaticProvider) GetEvent(ctx context.Context, id string) (*Event, error) {
	for i := range p.events {
		if p.events[i].ID == id {
			e := cloneEvent(p.events[i])
			return &e, nil
		}
	}
	return nil, apperr.NotFound("event", id)
}

// cloneEvent copies the category slice so callers cannot mutate the catalog
func cloneEvent(e Event) Event {
	e.Categories = append([]TicketCategory(nil), e.Categories...)
	return e
}
