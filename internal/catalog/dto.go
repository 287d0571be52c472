package catalog

import (
	"fmt"
	"strings"
	"time"

	"tikiti/pkg/money"
)

type EventResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Date        string             `json:"date"`
	Time        string             `json:"time"`
	StartsAt    time.Time          `json:"starts_at"`
	Venue       string             `json:"venue"`
	Location    string             `json:"location"`
	Image       string             `json:"image,omitempty"`
	Kind        Kind               `json:"kind"`
	Teams       *Fixture           `json:"teams,omitempty"`
	Categories  []CategoryResponse `json:"categories"`
}

type CategoryResponse struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Price        money.Amount `json:"price"`
	PriceDisplay string       `json:"price_display"`
	Currency     string       `json:"currency"`
	Available    int          `json:"available"`
	Description  string       `json:"description,omitempty"`
}

// ToResponse converts an event to its API shape with display date and time
func (e *Event) ToResponse() EventResponse {
	resp := EventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        DisplayDate(e.StartsAt),
		Time:        DisplayTime(e.StartsAt),
		StartsAt:    e.StartsAt,
		Venue:       e.Venue,
		Location:    e.Location,
		Image:       e.ImageURL,
		Kind:        e.Kind,
		Categories:  make([]CategoryResponse, 0, len(e.Categories)),
	}
	if f, ok := e.Fixture(); ok {
		resp.Teams = &f
	}
	for _, c := range e.Categories {
		resp.Categories = append(resp.Categories, CategoryResponse{
			ID:           c.ID,
			Name:         c.Name,
			Price:        c.Price,
			PriceDisplay: c.Price.Format(c.Currency),
			Currency:     c.Currency,
			Available:    c.Available,
			Description:  c.Description,
		})
	}
	return resp
}

// DisplayDate renders "FRIDAY 5TH, SEPTEMBER" in East Africa Time
func DisplayDate(t time.Time) string {
	local := t.In(eat)
	day := local.Day()
	return strings.ToUpper(fmt.Sprintf("%s %d%s, %s", local.Weekday(), day, ordinalSuffix(day), local.Month()))
}

// DisplayTime renders "4:00 PM" in East Africa Time
func DisplayTime(t time.Time) string {
	return t.In(eat).Format("3:04 PM")
}

func ordinalSuffix(day int) string {
	if day%100 >= 11 && day%100 <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
