package catalog

import (
	"fmt"
	"time"

	"tikiti/pkg/money"
)

// Kind discriminates events played between two teams from everything else
type Kind string

const (
	KindGeneral Kind = "general"
	KindFixture Kind = "fixture"
)

type Event struct {
	ID          string    `gorm:"primaryKey;size:64"`
	Title       string    `gorm:"not null;size:255"`
	Description string    `gorm:"type:text"`
	StartsAt    time.Time `gorm:"not null"`
	Venue       string    `gorm:"not null;size:255"`
	Location    string    `gorm:"size:255"`
	ImageURL    string    `gorm:"size:500"`
	Kind        Kind      `gorm:"type:varchar(20);not null;default:'general'"`

	// Set only when Kind is KindFixture; read through Fixture()
	HomeName string `gorm:"size:100"`
	HomeFlag string `gorm:"size:16"`
	AwayName string `gorm:"size:100"`
	AwayFlag string `gorm:"size:16"`

	Categories []TicketCategory `gorm:"foreignKey:EventID;references:ID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TicketCategory is one priced tier of an event. IDs are unique within an event.
type TicketCategory struct {
	EventID     string       `gorm:"primaryKey;size:64"`
	ID          string       `gorm:"primaryKey;size:64"`
	Name        string       `gorm:"not null;size:100"`
	Price       money.Amount `gorm:"not null;check:price >= 0"`
	Currency    string       `gorm:"not null;size:3"`
	Available   int          `gorm:"not null;check:available >= 0"`
	Description string       `gorm:"size:500"`
	Position    int          `gorm:"not null"`
}

// Side is one team of a fixture
type Side struct {
	Name string `json:"name"`
	Flag string `json:"flag"`
}

type Fixture struct {
	Home Side `json:"home"`
	Away Side `json:"away"`
}

// Fixture returns the two sides when the event is a fixture
func (e *Event) Fixture() (Fixture, bool) {
	if e.Kind != KindFixture {
		return Fixture{}, false
	}
	return Fixture{
		Home: Side{Name: e.HomeName, Flag: e.HomeFlag},
		Away: Side{Name: e.AwayName, Flag: e.AwayFlag},
	}, true
}

// SetFixture turns the event into a fixture between home and away
func (e *Event) SetFixture(f Fixture) {
	e.Kind = KindFixture
	e.HomeName, e.HomeFlag = f.Home.Name, f.Home.Flag
	e.AwayName, e.AwayFlag = f.Away.Name, f.Away.Flag
}

// Category looks a category up by id
func (e *Event) Category(id string) (*TicketCategory, bool) {
	for i := range e.Categories {
		if e.Categories[i].ID == id {
			return &e.Categories[i], true
		}
	}
	return nil, false
}

// Validate checks the catalog invariants for one event
func (e *Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("event id is required")
	}
	seen := make(map[string]struct{}, len(e.Categories))
	for _, c := range e.Categories {
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("event %s: duplicate category id %s", e.ID, c.ID)
		}
		seen[c.ID] = struct{}{}
		if c.Price < 0 {
			return fmt.Errorf("event %s: category %s has a negative price", e.ID, c.ID)
		}
		if c.Available < 0 {
			return fmt.Errorf("event %s: category %s has a negative available count", e.ID, c.ID)
		}
	}
	if e.Kind == KindFixture && (e.HomeName == "" || e.AwayName == "") {
		return fmt.Errorf("event %s: fixture needs both sides", e.ID)
	}
	return nil
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return "events"
}

func (TicketCategory) TableName() string {
	return "ticket_categories"
}
