package selection

import (
	"fmt"

	"tikiti/internal/catalog"
	"tikiti/internal/shared/apperr"
	"tikiti/pkg/money"
)

// Quantities maps category id to the requested quantity. Missing entries
// mean zero.
type Quantities map[string]int

// MaxQuantity bounds one category of one selection. Larger requests are
// rejected rather than clamped.
const MaxQuantity = 10000

// CartItem is one non-empty line handed to checkout. UnitPrice is captured
// when the cart is built and never re-derived from the catalog.
type CartItem struct {
	EventID      string       `json:"event_id"`
	CategoryID   string       `json:"category_id"`
	CategoryName string       `json:"category_name"`
	Quantity     int          `json:"quantity"`
	UnitPrice    money.Amount `json:"unit_price"`
	Currency     string       `json:"currency"`
}

// LineTotal is UnitPrice * Quantity
func (i CartItem) LineTotal() money.Amount {
	return i.UnitPrice.Mul(i.Quantity)
}

// SetQuantity returns a copy of q with categoryID set to requested, clamped
// at zero. There is no upper clamp; Available is only a hint.
func SetQuantity(q Quantities, categoryID string, requested int) Quantities {
	if requested < 0 {
		requested = 0
	}
	out := make(Quantities, len(q)+1)
	for id, n := range q {
		out[id] = n
	}
	out[categoryID] = requested
	return out
}

func LineTotal(category catalog.TicketCategory, quantity int) money.Amount {
	return category.Price.Mul(quantity)
}

// GrandTotal sums LineTotal over every category of the event
func GrandTotal(event *catalog.Event, q Quantities) money.Amount {
	var total money.Amount
	for _, c := range event.Categories {
		total = total.Add(LineTotal(c, q[c.ID]))
	}
	return total
}

// TotalQuantity counts tickets across all categories
func TotalQuantity(q Quantities) int {
	n := 0
	for _, qty := range q {
		if qty > 0 {
			n += qty
		}
	}
	return n
}

// BuildCart emits one item per category with a positive quantity, in the
// event's category order. It fails with ErrEmptySelection when nothing is
// selected.
func BuildCart(event *catalog.Event, q Quantities) ([]CartItem, error) {
	var items []CartItem
	for _, c := range event.Categories {
		qty := q[c.ID]
		if qty <= 0 {
			continue
		}
		items = append(items, CartItem{
			EventID:      event.ID,
			CategoryID:   c.ID,
			CategoryName: c.Name,
			Quantity:     qty,
			UnitPrice:    c.Price,
			Currency:     c.Currency,
		})
	}
	if len(items) == 0 {
		return nil, apperr.ErrEmptySelection
	}
	if _, err := CheckedCartTotal(items); err != nil {
		return nil, err
	}
	return items, nil
}

// CheckedCartTotal sums a cart, reporting an out-of-range quantity when the
// total cannot be represented
func CheckedCartTotal(items []CartItem) (money.Amount, error) {
	var total money.Amount
	for _, item := range items {
		line, err := item.UnitPrice.CheckedMul(item.Quantity)
		if err != nil {
			return 0, fmt.Errorf("%s: %w: %w", item.CategoryName, apperr.OutOfRange("quantity"), err)
		}
		if total, err = total.CheckedAdd(line); err != nil {
			return 0, fmt.Errorf("cart total: %w: %w", apperr.OutOfRange("quantity"), err)
		}
	}
	return total, nil
}

// CartTotal sums the captured line totals of a cart
func CartTotal(items []CartItem) money.Amount {
	var total money.Amount
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}
