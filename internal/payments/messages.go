package payments

import "tikiti/pkg/money"

// PaymentRequest asks the provider to collect Amount for OrderID. For mobile
// money the provider pushes a confirmation prompt to Phone.
type PaymentRequest struct {
	OrderID     string       `json:"order_id"`
	Phone       string       `json:"phone"`
	Amount      money.Amount `json:"amount"`
	Currency    string       `json:"currency"`
	Method      string       `json:"method"`
	Description string       `json:"description"`
}

// PaymentAck is the provider's synchronous answer. Accepted only means the
// request was queued; the outcome arrives later as a Settlement.
type PaymentAck struct {
	Reference string `json:"reference"`
	Accepted  bool   `json:"accepted"`
	Message   string `json:"message,omitempty"`
}

type SettlementStatus string

const (
	SettlementCompleted SettlementStatus = "completed"
	SettlementFailed    SettlementStatus = "failed"
)

// Settlement is the out-of-band outcome delivered by the provider callback
type Settlement struct {
	OrderID   string           `json:"order_id"`
	Reference string           `json:"reference"`
	Status    SettlementStatus `json:"status"`
	Reason    string           `json:"reason,omitempty"`
}
