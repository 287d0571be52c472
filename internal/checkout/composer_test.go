package checkout

import (
	"context"
	"testing"
	"time"

	"tikiti/internal/orders"
	"tikiti/internal/payments"
	"tikiti/internal/selection"
	"tikiti/internal/shared/apperr"
	"tikiti/pkg/logger"
	"tikiti/pkg/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func composerCart() []selection.CartItem {
	return []selection.CartItem{{
		EventID: "1", CategoryID: "1", CategoryName: "Regular",
		Quantity: 2, UnitPrice: money.FromMajor(300), Currency: "KES",
	}}
}

func composerBilling() BillingDetails {
	return BillingDetails{Name: "Wanjiku", Email: "wanjiku@example.com", Phone: "0712345678", PaymentMethod: PaymentMethodMpesa}
}

func TestComposerIgnoresSettlementWithForeignReference(t *testing.T) {
	gateway := &manualGateway{}
	hub := payments.NewSettlements()
	recorder := orders.NewMemoryRecorder()
	composer := NewComposer(recorder, gateway, hub, ValidateOptions{}, logger.Discard())

	type result struct {
		outcome *Outcome
		err     error
	}
	done := make(chan result, 1)
	go func() {
		outcome, err := composer.SubmitOrder(context.Background(), "co-1", EventSnapshot{ID: "1", Title: "Kenya vs Gambia"}, composerCart(), composerBilling())
		done <- result{outcome, err}
	}()

	require.Eventually(t, func() bool { return hub.Pending() == 1 }, time.Second, time.Millisecond)
	orderID := gateway.sent()[0].OrderID

	assert.False(t, hub.Resolve(payments.Settlement{OrderID: orderID, Reference: "TXN_FORGED", Status: payments.SettlementCompleted}))
	select {
	case <-done:
		t.Fatal("forged settlement completed the attempt")
	case <-time.After(20 * time.Millisecond):
	}

	order, err := recorder.GetByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPending, order.Status)

	assert.True(t, hub.Resolve(payments.Settlement{OrderID: orderID, Reference: "TXN_TEST", Status: payments.SettlementFailed, Reason: "insufficient funds"}))
	res := <-done
	assert.ErrorIs(t, res.err, apperr.ErrPayment)
	assert.Equal(t, orders.StatusFailed, res.outcome.Status)
	assert.Equal(t, "TXN_TEST", res.outcome.PaymentReference)

	order, err = recorder.GetByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusFailed, order.Status)
	assert.Equal(t, "insufficient funds", order.FailureReason)
}

func TestComposerForgedSettlementBeforeAckIsNotUsed(t *testing.T) {
	gateway := &manualGateway{}
	hub := payments.NewSettlements()
	recorder := orders.NewMemoryRecorder()
	composer := NewComposer(recorder, gateway, hub, ValidateOptions{}, logger.Discard())

	// the order id is not known up front, so forge for every id the gateway sees
	forging := &forgingGateway{inner: gateway, hub: hub}
	composer.gateway = forging

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	outcome, err := composer.SubmitOrder(ctx, "co-2", EventSnapshot{ID: "1"}, composerCart(), composerBilling())
	assert.ErrorIs(t, err, apperr.ErrPayment)
	require.NotNil(t, outcome)
	assert.Equal(t, orders.StatusFailed, outcome.Status)
	assert.Equal(t, "payment timed out", outcome.Reason)
}

// forgingGateway settles every request with a reference the provider never issued
type forgingGateway struct {
	inner payments.Gateway
	hub   *payments.Settlements
}

func (g *forgingGateway) Name() string { return "forging" }

func (g *forgingGateway) Initiate(ctx context.Context, req payments.PaymentRequest) (*payments.PaymentAck, error) {
	g.hub.Resolve(payments.Settlement{OrderID: req.OrderID, Reference: "TXN_FORGED", Status: payments.SettlementCompleted})
	return g.inner.Initiate(ctx, req)
}
