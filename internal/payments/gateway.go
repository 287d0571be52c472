package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tikiti/pkg/logger"

	"github.com/google/uuid"
)

// Gateway initiates payments. Initiation is never retried by callers: a
// retried push could charge the buyer twice.
type Gateway interface {
	Name() string
	Initiate(ctx context.Context, req PaymentRequest) (*PaymentAck, error)
}

// Decision picks the settlement a simulated payment ends in
type Decision func(req PaymentRequest) (SettlementStatus, string)

// AlwaysComplete settles every simulated payment successfully
func AlwaysComplete(PaymentRequest) (SettlementStatus, string) {
	return SettlementCompleted, ""
}

// SimulatedGateway acknowledges immediately and settles through the hub
// after a fixed delay, the way a mobile money push resolves once the buyer
// confirms on their phone.
type SimulatedGateway struct {
	hub    *Settlements
	delay  time.Duration
	decide Decision
	log    *logger.Logger
}

func NewSimulatedGateway(hub *Settlements, delay time.Duration, decide Decision, log *logger.Logger) *SimulatedGateway {
	if decide == nil {
		decide = AlwaysComplete
	}
	return &SimulatedGateway{hub: hub, delay: delay, decide: decide, log: log}
}

func (g *SimulatedGateway) Name() string {
	return "simulated"
}

func (g *SimulatedGateway) Initiate(ctx context.Context, req PaymentRequest) (*PaymentAck, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.OrderID == "" {
		return nil, fmt.Errorf("payment request has no order id")
	}

	ack := &PaymentAck{
		Reference: generateTransactionID(time.Now()),
		Accepted:  true,
		Message:   "Confirm the payment prompt on your phone",
	}

	status, reason := g.decide(req)
	settlement := Settlement{
		OrderID:   req.OrderID,
		Reference: ack.Reference,
		Status:    status,
		Reason:    reason,
	}
	time.AfterFunc(g.delay, func() {
		g.log.LogPaymentCallback(context.Background(), settlement.OrderID, settlement.Reference, string(settlement.Status))
		g.hub.Resolve(settlement)
	})

	return ack, nil
}

// generateTransactionID generates a mock transaction ID
func generateTransactionID(now time.Time) string {
	shortUUID := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("TXN_%d_%s", now.Unix(), strings.ToUpper(shortUUID))
}
