package selection

import "time"

// Session holds one buyer's quantities for one event
type Session struct {
	ID         string     `json:"id"`
	EventID    string     `json:"event_id"`
	Quantities Quantities `json:"quantities"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
