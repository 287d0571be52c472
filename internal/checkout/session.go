package checkout

import (
	"fmt"
	"time"

	"tikiti/internal/catalog"
	"tikiti/internal/selection"
	"tikiti/pkg/money"
)

// EventSnapshot is the part of an event a checkout page shows
type EventSnapshot struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Venue    string `json:"venue"`
	Location string `json:"location"`
}

func snapshotEvent(e *catalog.Event) EventSnapshot {
	return EventSnapshot{
		ID:       e.ID,
		Title:    e.Title,
		Date:     catalog.DisplayDate(e.StartsAt),
		Time:     catalog.DisplayTime(e.StartsAt),
		Venue:    e.Venue,
		Location: e.Location,
	}
}

type Transition struct {
	From    Status    `json:"from"`
	To      Status    `json:"to"`
	Attempt int       `json:"attempt"`
	Reason  string    `json:"reason,omitempty"`
	At      time.Time `json:"at"`
}

// Session is one buyer's checkout: a frozen cart plus billing details and
// the state of the current submit attempt.
type Session struct {
	ID          string               `json:"id"`
	SelectionID string               `json:"selection_id,omitempty"`
	Event       EventSnapshot        `json:"event"`
	Items       []selection.CartItem `json:"items"`
	Total       money.Amount         `json:"total"`
	Currency    string               `json:"currency"`
	Billing     BillingDetails       `json:"billing"`

	Status         Status       `json:"status"`
	Attempt        int          `json:"attempt"`
	Transitions    []Transition `json:"transitions"`
	OrderID        string       `json:"order_id,omitempty"`
	OrderReference string       `json:"order_reference,omitempty"`
	FailureReason  string       `json:"failure_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Valid reports whether the session still carries what a checkout needs
func (s *Session) Valid() bool {
	return s.Event.ID != "" && len(s.Items) > 0
}

// transition moves the session along the status table
func (s *Session) transition(next Status, reason string, at time.Time) error {
	if !s.Status.CanTransitionTo(next) {
		return fmt.Errorf("checkout %s: illegal transition %s -> %s", s.ID, s.Status, next)
	}
	s.Transitions = append(s.Transitions, Transition{
		From:    s.Status,
		To:      next,
		Attempt: s.Attempt,
		Reason:  reason,
		At:      at,
	})
	s.Status = next
	s.UpdatedAt = at
	return nil
}
