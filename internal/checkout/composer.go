package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tikiti/internal/orders"
	"tikiti/internal/payments"
	"tikiti/internal/selection"
	"tikiti/internal/shared/apperr"
	"tikiti/pkg/logger"

	"github.com/google/uuid"
)

// Outcome is the terminal result of one submit attempt
type Outcome struct {
	OrderID          string
	OrderReference   string
	PaymentReference string
	Status           orders.Status
	Reason           string
}

// Composer turns a cart and billing details into a recorded, paid order
type Composer struct {
	recorder orders.Recorder
	gateway  payments.Gateway
	hub      *payments.Settlements
	opts     ValidateOptions
	log      *logger.Logger
	now      func() time.Time
}

func NewComposer(recorder orders.Recorder, gateway payments.Gateway, hub *payments.Settlements, opts ValidateOptions, log *logger.Logger) *Composer {
	return &Composer{
		recorder: recorder,
		gateway:  gateway,
		hub:      hub,
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

// SubmitOrder records a pending order, initiates payment once and waits for
// the settlement until ctx is done. Payment failures come back as a failed
// Outcome together with an error wrapping apperr.ErrPayment.
func (c *Composer) SubmitOrder(ctx context.Context, checkoutID string, event EventSnapshot, cart []selection.CartItem, billing BillingDetails) (*Outcome, error) {
	if len(cart) == 0 {
		return nil, apperr.ErrEmptySelection
	}
	if err := Validate(billing, c.opts); err != nil {
		return nil, err
	}

	order, err := c.newOrder(checkoutID, event, cart, billing)
	if err != nil {
		return nil, err
	}
	if err := c.recorder.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to record order: %w", err)
	}

	outcome := &Outcome{OrderID: order.ID, OrderReference: order.Reference}

	ack, err := c.gateway.Initiate(ctx, payments.PaymentRequest{
		OrderID:     order.ID,
		Phone:       billing.Phone,
		Amount:      order.Total,
		Currency:    order.Currency,
		Method:      billing.PaymentMethod.String(),
		Description: fmt.Sprintf("%s tickets (%s)", event.Title, order.Reference),
	})
	if err != nil {
		return c.fail(ctx, outcome, "payment could not be initiated", err)
	}
	if !ack.Accepted {
		return c.fail(ctx, outcome, ack.Message, nil)
	}
	outcome.PaymentReference = ack.Reference

	settlement, err := c.hub.Await(ctx, order.ID, ack.Reference)
	if err != nil {
		reason := "payment timed out"
		if errors.Is(err, context.Canceled) {
			reason = "checkout cancelled"
		}
		return c.fail(ctx, outcome, reason, err)
	}
	if settlement.Status != payments.SettlementCompleted {
		reason := settlement.Reason
		if reason == "" {
			reason = "payment declined"
		}
		return c.fail(ctx, outcome, reason, nil)
	}

	outcome.Status = orders.StatusCompleted
	if err := c.recorder.UpdateStatus(context.WithoutCancel(ctx), order.ID, orders.Update{
		Status:           orders.StatusCompleted,
		PaymentReference: settlement.Reference,
		SettledAt:        c.now().UTC(),
	}); err != nil {
		return outcome, fmt.Errorf("failed to mark order %s completed: %w", order.ID, err)
	}
	return outcome, nil
}

// fail marks the order failed. The update outlives a cancelled ctx so the
// order never stays pending.
func (c *Composer) fail(ctx context.Context, outcome *Outcome, reason string, cause error) (*Outcome, error) {
	if reason == "" {
		reason = "payment declined"
	}
	outcome.Status = orders.StatusFailed
	outcome.Reason = reason

	if err := c.recorder.UpdateStatus(context.WithoutCancel(ctx), outcome.OrderID, orders.Update{
		Status:           orders.StatusFailed,
		PaymentReference: outcome.PaymentReference,
		FailureReason:    reason,
		SettledAt:        c.now().UTC(),
	}); err != nil {
		c.log.WithFields(map[string]interface{}{
			"order_id": outcome.OrderID,
			"reason":   reason,
		}).WithError(err).WarnContext(ctx, "Failed to mark order failed")
	}

	if cause != nil {
		return outcome, fmt.Errorf("%s: %w: %w", reason, apperr.ErrPayment, cause)
	}
	return outcome, fmt.Errorf("%s: %w", reason, apperr.ErrPayment)
}

func (c *Composer) newOrder(checkoutID string, event EventSnapshot, cart []selection.CartItem, billing BillingDetails) (*orders.Order, error) {
	now := c.now().UTC()
	reference, err := orders.GenerateReference(now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate order reference: %w", err)
	}

	order := &orders.Order{
		ID:            uuid.NewString(),
		Reference:     reference,
		CheckoutID:    checkoutID,
		EventID:       event.ID,
		BuyerName:     billing.Name,
		BuyerEmail:    billing.Email,
		BuyerPhone:    billing.Phone,
		PaymentMethod: billing.PaymentMethod.String(),
		Total:         selection.CartTotal(cart),
		Currency:      cart[0].Currency,
		Status:        orders.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
		Items:         make([]orders.OrderItem, 0, len(cart)),
	}
	for _, item := range cart {
		order.Items = append(order.Items, orders.OrderItem{
			OrderID:      order.ID,
			CategoryID:   item.CategoryID,
			CategoryName: item.CategoryName,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			LineTotal:    item.LineTotal(),
		})
	}
	return order, nil
}
