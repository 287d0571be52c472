package selection

import (
	"time"

	"tikiti/internal/catalog"
	"tikiti/pkg/money"
)

type SetQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required,max=10000"`
}

type LineResponse struct {
	CategoryID       string       `json:"category_id"`
	Name             string       `json:"name"`
	UnitPrice        money.Amount `json:"unit_price"`
	Quantity         int          `json:"quantity"`
	LineTotal        money.Amount `json:"line_total"`
	Available        int          `json:"available"`
	ExceedsAvailable bool         `json:"exceeds_available"`
}

type SelectionResponse struct {
	ID                string         `json:"id"`
	EventID           string         `json:"event_id"`
	EventTitle        string         `json:"event_title"`
	Lines             []LineResponse `json:"lines"`
	TotalQuantity     int            `json:"total_quantity"`
	GrandTotal        money.Amount   `json:"grand_total"`
	GrandTotalDisplay string         `json:"grand_total_display"`
	Currency          string         `json:"currency"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// Summarize prices a session against the event's current categories
func Summarize(session *Session, event *catalog.Event) *SelectionResponse {
	resp := &SelectionResponse{
		ID:            session.ID,
		EventID:       event.ID,
		EventTitle:    event.Title,
		Lines:         make([]LineResponse, 0, len(event.Categories)),
		TotalQuantity: TotalQuantity(session.Quantities),
		GrandTotal:    GrandTotal(event, session.Quantities),
		UpdatedAt:     session.UpdatedAt,
	}
	for _, c := range event.Categories {
		qty := session.Quantities[c.ID]
		resp.Lines = append(resp.Lines, LineResponse{
			CategoryID:       c.ID,
			Name:             c.Name,
			UnitPrice:        c.Price,
			Quantity:         qty,
			LineTotal:        LineTotal(c, qty),
			Available:        c.Available,
			ExceedsAvailable: qty > c.Available,
		})
		if resp.Currency == "" {
			resp.Currency = c.Currency
		}
	}
	resp.GrandTotalDisplay = resp.GrandTotal.Format(resp.Currency)
	return resp
}
