package catalog

import (
	"time"

	"tikiti/pkg/money"
)

// eat is East Africa Time. A fixed zone keeps the binary free of tzdata.
var eat = time.FixedZone("EAT", 3*60*60)

const (
	kasarani = "MOI INTERNATIONAL SPORTS CENTRE (MISC), KASARANI"
	nairobi  = "Nairobi, Kenya"
)

func standardCategories(eventID string) []TicketCategory {
	tiers := []struct {
		id, name  string
		price     int64
		available int
	}{
		{"1", "Regular", 300, 100},
		{"2", "Silver", 500, 50},
		{"3", "VIP", 2000, 20},
		{"4", "VVIP", 5000, 10},
	}
	categories := make([]TicketCategory, len(tiers))
	for i, t := range tiers {
		categories[i] = TicketCategory{
			EventID:   eventID,
			ID:        t.id,
			Name:      t.name,
			Price:     money.FromMajor(t.price),
			Currency:  "KES",
			Available: t.available,
			Position:  i,
		}
	}
	return categories
}

func qualifier(id, away, flag, image string, startsAt time.Time) Event {
	e := Event{
		ID:          id,
		Title:       "Kenya vs " + away,
		Description: "2026 World Cup Qualifiers",
		StartsAt:    startsAt,
		Venue:       kasarani,
		Location:    nairobi,
		ImageURL:    image,
		Categories:  standardCategories(id),
	}
	e.SetFixture(Fixture{
		Home: Side{Name: "Kenya", Flag: "🇰🇪"},
		Away: Side{Name: away, Flag: flag},
	})
	return e
}

// BuiltinEvents returns a fresh copy of the built-in catalog
func BuiltinEvents() []Event {
	return []Event{
		qualifier("1", "Gambia", "🇬🇲",
			"https://s3.amazonaws.com/tikiti.ke/01K3TG4B17ADWFSYH0WE7PS33Z.jpeg",
			time.Date(2025, time.September, 5, 16, 0, 0, 0, eat)),
		qualifier("2", "Seychelles", "🇸🇨",
			"https://s3.amazonaws.com/tikiti.ke/01K3TG349RVC4HVYFJ0G5KE7KQ.jpeg",
			time.Date(2025, time.September, 9, 16, 0, 0, 0, eat)),
	}
}
