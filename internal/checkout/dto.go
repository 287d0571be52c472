package checkout

import (
	"time"

	"tikiti/pkg/money"
)

// BillingUpdateRequest changes only the fields that are present
type BillingUpdateRequest struct {
	Name          *string `json:"name" binding:"omitempty,max=255"`
	Email         *string `json:"email" binding:"omitempty,max=255"`
	Phone         *string `json:"phone" binding:"omitempty,max=32"`
	PaymentMethod *string `json:"payment_method" binding:"omitempty,payment_method"`
}

type LineResponse struct {
	CategoryID       string       `json:"category_id"`
	Name             string       `json:"name"`
	Quantity         int          `json:"quantity"`
	UnitPrice        money.Amount `json:"unit_price"`
	LineTotal        money.Amount `json:"line_total"`
	LineTotalDisplay string       `json:"line_total_display"`
}

type BillingResponse struct {
	Name              string        `json:"name"`
	Email             string        `json:"email"`
	Phone             string        `json:"phone"`
	PaymentMethod     PaymentMethod `json:"payment_method"`
	PaymentMethodName string        `json:"payment_method_name"`
}

type MethodOption struct {
	Value PaymentMethod `json:"value"`
	Name  string        `json:"name"`
}

type CheckoutResponse struct {
	ID             string          `json:"id"`
	SelectionID    string          `json:"selection_id,omitempty"`
	Event          EventSnapshot   `json:"event"`
	Lines          []LineResponse  `json:"lines"`
	Total          money.Amount    `json:"total"`
	TotalDisplay   string          `json:"total_display"`
	Currency       string          `json:"currency"`
	Billing        BillingResponse `json:"billing"`
	PaymentMethods []MethodOption  `json:"payment_methods"`
	Status         Status          `json:"status"`
	Attempt        int             `json:"attempt"`
	Transitions    []Transition    `json:"transitions"`
	OrderID        string          `json:"order_id,omitempty"`
	OrderReference string          `json:"order_reference,omitempty"`
	FailureReason  string          `json:"failure_reason,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type SubmitResponse struct {
	// Accepted is false when another submit was already processing
	Accepted bool              `json:"accepted"`
	Checkout *CheckoutResponse `json:"checkout"`
}

func toResponse(s *Session, methods []PaymentMethod) *CheckoutResponse {
	resp := &CheckoutResponse{
		ID:           s.ID,
		SelectionID:  s.SelectionID,
		Event:        s.Event,
		Lines:        make([]LineResponse, 0, len(s.Items)),
		Total:        s.Total,
		TotalDisplay: s.Total.Format(s.Currency),
		Currency:     s.Currency,
		Billing: BillingResponse{
			Name:              s.Billing.Name,
			Email:             s.Billing.Email,
			Phone:             s.Billing.Phone,
			PaymentMethod:     s.Billing.PaymentMethod,
			PaymentMethodName: s.Billing.PaymentMethod.DisplayName(),
		},
		PaymentMethods: make([]MethodOption, 0, len(methods)),
		Status:         s.Status,
		Attempt:        s.Attempt,
		Transitions:    s.Transitions,
		OrderID:        s.OrderID,
		OrderReference: s.OrderReference,
		FailureReason:  s.FailureReason,
		UpdatedAt:      s.UpdatedAt,
	}
	for _, item := range s.Items {
		resp.Lines = append(resp.Lines, LineResponse{
			CategoryID:       item.CategoryID,
			Name:             item.CategoryName,
			Quantity:         item.Quantity,
			UnitPrice:        item.UnitPrice,
			LineTotal:        item.LineTotal(),
			LineTotalDisplay: item.LineTotal().Format(item.Currency),
		})
	}
	for _, m := range methods {
		resp.PaymentMethods = append(resp.PaymentMethods, MethodOption{Value: m, Name: m.DisplayName()})
	}
	return resp
}
