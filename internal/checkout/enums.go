package checkout

import (
	"fmt"
	"strings"

	"tikiti/internal/shared/apperr"
)

type PaymentMethod string

const (
	PaymentMethodMpesa PaymentMethod = "mpesa"
	PaymentMethodCard  PaymentMethod = "card"
)

// AllPaymentMethods lists methods in the order the client shows them
var AllPaymentMethods = []PaymentMethod{PaymentMethodMpesa, PaymentMethodCard}

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodMpesa, PaymentMethodCard:
		return true
	}
	return false
}

func (m PaymentMethod) String() string {
	return string(m)
}

// DisplayName is the label the buyer picks from
func (m PaymentMethod) DisplayName() string {
	switch m {
	case PaymentMethodMpesa:
		return "M-Pesa"
	case PaymentMethodCard:
		return "Card"
	default:
		return string(m)
	}
}

// IsMobileMoney reports whether the method needs a mobile number to push to
func (m PaymentMethod) IsMobileMoney() bool {
	return m == PaymentMethodMpesa
}

// ParsePaymentMethod accepts the wire value or the display name
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mpesa", "m-pesa":
		return PaymentMethodMpesa, nil
	case "card":
		return PaymentMethodCard, nil
	}
	return "", fmt.Errorf("unknown payment method %q: %w", s, apperr.ErrInvalidInput)
}

type Status string

const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// transitions lists the statuses each status may move to. A failed attempt
// can be submitted again; a completed one cannot.
var transitions = map[Status][]Status{
	StatusIdle:       {StatusProcessing},
	StatusProcessing: {StatusCompleted, StatusFailed},
	StatusFailed:     {StatusProcessing},
	StatusCompleted:  {},
}

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo checks the transition table
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
