package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"tikiti/internal/catalog"
	"tikiti/internal/notifications"
	"tikiti/internal/orders"
	"tikiti/internal/payments"
	"tikiti/internal/selection"
	"tikiti/internal/shared/apperr"
	"tikiti/pkg/cache"
	"tikiti/pkg/logger"
	"tikiti/pkg/money"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualGateway acknowledges every request and leaves settlement to the test
type manualGateway struct {
	mu       sync.Mutex
	requests []payments.PaymentRequest
}

func (g *manualGateway) Name() string { return "manual" }

func (g *manualGateway) Initiate(ctx context.Context, req payments.PaymentRequest) (*payments.PaymentAck, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	return &payments.PaymentAck{Reference: "TXN_TEST", Accepted: true}, nil
}

func (g *manualGateway) sent() []payments.PaymentRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]payments.PaymentRequest(nil), g.requests...)
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []*notifications.OrderNotification
}

func (p *recordingPublisher) Publish(ctx context.Context, n *notifications.OrderNotification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

type fixture struct {
	svc        *service
	selections selection.Service
	recorder   orders.Recorder
	hub        *payments.Settlements
	publisher  *recordingPublisher
}

func newFixture(t *testing.T, gateway payments.Gateway, cfg Config) *fixture {
	t.Helper()
	log := logger.Discard()

	provider, err := catalog.NewStaticProvider(catalog.BuiltinEvents())
	require.NoError(t, err)
	memory := cache.NewMemoryService(log)
	selections := selection.NewService(catalog.NewService(provider, nil), selection.NewStore(memory, time.Minute))

	hub := payments.NewSettlements()
	if gateway == nil {
		gateway = payments.NewSimulatedGateway(hub, 10*time.Millisecond, nil, log)
	}
	recorder := orders.NewMemoryRecorder()
	publisher := &recordingPublisher{}
	composer := NewComposer(recorder, gateway, hub, ValidateOptions{StrictEmail: cfg.StrictEmail}, log)

	svc := NewService(selections, NewStore(memory, time.Minute), NewLocker(memory, time.Minute), composer, publisher, cfg, log)
	return &fixture{svc: svc.(*service), selections: selections, recorder: recorder, hub: hub, publisher: publisher}
}

// openCheckout selects two Regular and one Silver for "Kenya vs Gambia"
func (f *fixture) openCheckout(t *testing.T) *CheckoutResponse {
	t.Helper()
	ctx := context.Background()
	sel, err := f.selections.Start(ctx, "1")
	require.NoError(t, err)
	_, err = f.selections.SetQuantity(ctx, sel.ID, "1", 2)
	require.NoError(t, err)
	_, err = f.selections.SetQuantity(ctx, sel.ID, "2", 1)
	require.NoError(t, err)

	co, err := f.svc.OpenFromSelection(ctx, sel.ID)
	require.NoError(t, err)
	return co
}

func (f *fixture) fillBilling(t *testing.T, id string) {
	t.Helper()
	name, email, phone := "Wanjiku", "wanjiku@example.com", "0712345678"
	_, err := f.svc.UpdateBilling(context.Background(), id, BillingUpdateRequest{Name: &name, Email: &email, Phone: &phone})
	require.NoError(t, err)
}

func TestOpenSnapshotsCart(t *testing.T) {
	f := newFixture(t, nil, Config{})
	co := f.openCheckout(t)

	assert.Equal(t, StatusIdle, co.Status)
	assert.Equal(t, "Kenya vs Gambia", co.Event.Title)
	assert.Equal(t, "4:00 PM", co.Event.Time)
	require.Len(t, co.Lines, 2)
	assert.Equal(t, money.FromMajor(600), co.Lines[0].LineTotal)
	assert.Equal(t, money.FromMajor(1100), co.Total)
	assert.Equal(t, "KES 1,100", co.TotalDisplay)
	assert.Equal(t, PaymentMethodMpesa, co.Billing.PaymentMethod)
	assert.Equal(t, "M-Pesa", co.Billing.PaymentMethodName)
}

func TestOpenEmptySelection(t *testing.T) {
	f := newFixture(t, nil, Config{})
	sel, err := f.selections.Start(context.Background(), "1")
	require.NoError(t, err)

	_, err = f.svc.OpenFromSelection(context.Background(), sel.ID)
	assert.ErrorIs(t, err, apperr.ErrEmptySelection)
}

func TestUpdateBillingFieldByField(t *testing.T) {
	f := newFixture(t, nil, Config{})
	co := f.openCheckout(t)
	ctx := context.Background()

	blank := "   "
	updated, err := f.svc.UpdateBilling(ctx, co.ID, BillingUpdateRequest{Name: &blank})
	require.NoError(t, err)
	assert.Equal(t, "   ", updated.Billing.Name)

	name := "Wanjiku"
	updated, err = f.svc.UpdateBilling(ctx, co.ID, BillingUpdateRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Wanjiku", updated.Billing.Name)

	phone := "0712345678"
	updated, err = f.svc.UpdateBilling(ctx, co.ID, BillingUpdateRequest{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Wanjiku", updated.Billing.Name)
	assert.Equal(t, "0712345678", updated.Billing.Phone)

	_, err = f.svc.Validate(ctx, co.ID)
	ve, ok := apperr.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "email", ve.Field)

	card := "Card"
	_, err = f.svc.UpdateBilling(ctx, co.ID, BillingUpdateRequest{PaymentMethod: &card})
	assert.ErrorIs(t, err, apperr.ErrPaymentMethodUnavailable)
}

func TestSubmitCompletes(t *testing.T) {
	f := newFixture(t, nil, Config{})
	co := f.openCheckout(t)
	f.fillBilling(t, co.ID)
	ctx := context.Background()

	res, err := f.svc.Submit(ctx, co.ID)
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, StatusProcessing, res.Checkout.Status)
	assert.Equal(t, 1, res.Checkout.Attempt)

	f.svc.wg.Wait()

	done, err := f.svc.Get(ctx, co.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	assert.NotEmpty(t, done.OrderID)
	assert.True(t, strings.HasPrefix(done.OrderReference, "TKT-"))

	order, err := f.recorder.GetByID(ctx, done.OrderID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCompleted, order.Status)
	assert.Equal(t, money.FromMajor(1100), order.Total)
	assert.Len(t, order.Items, 2)

	assert.Equal(t, 1, f.publisher.count())

	_, err = f.svc.Submit(ctx, co.ID)
	assert.ErrorIs(t, err, apperr.ErrCheckoutCompleted)
}

func TestDuplicateSubmitIsDropped(t *testing.T) {
	gateway := &manualGateway{}
	f := newFixture(t, gateway, Config{})
	co := f.openCheckout(t)
	f.fillBilling(t, co.ID)
	ctx := context.Background()

	first, err := f.svc.Submit(ctx, co.ID)
	require.NoError(t, err)
	assert.True(t, first.Accepted)

	second, err := f.svc.Submit(ctx, co.ID)
	require.NoError(t, err)
	assert.False(t, second.Accepted)
	assert.Equal(t, StatusProcessing, second.Checkout.Status)

	require.Eventually(t, func() bool { return len(gateway.sent()) == 1 }, time.Second, time.Millisecond)
	req := gateway.sent()[0]
	f.hub.Resolve(payments.Settlement{OrderID: req.OrderID, Reference: "TXN_TEST", Status: payments.SettlementCompleted})
	f.svc.wg.Wait()

	done, err := f.svc.Get(ctx, co.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	assert.Len(t, gateway.sent(), 1)

	terminal := 0
	for _, tr := range done.Transitions {
		if tr.To.IsTerminal() {
			terminal++
		}
	}
	assert.Equal(t, 1, terminal)
	assert.Len(t, done.Transitions, 2)
}

func TestDeclinedPaymentCanBeRetried(t *testing.T) {
	gateway := &manualGateway{}
	f := newFixture(t, gateway, Config{})
	co := f.openCheckout(t)
	f.fillBilling(t, co.ID)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, co.ID)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(gateway.sent()) == 1 }, time.Second, time.Millisecond)
	f.hub.Resolve(payments.Settlement{OrderID: gateway.sent()[0].OrderID, Reference: "TXN_TEST", Status: payments.SettlementFailed, Reason: "insufficient funds"})
	f.svc.wg.Wait()

	failed, err := f.svc.Get(ctx, co.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, failed.Status)
	assert.Equal(t, "insufficient funds", failed.FailureReason)
	assert.Equal(t, 0, f.publisher.count())

	retry, err := f.svc.Submit(ctx, co.ID)
	require.NoError(t, err)
	assert.True(t, retry.Accepted)
	assert.Equal(t, 2, retry.Checkout.Attempt)
	assert.Empty(t, retry.Checkout.FailureReason)

	require.Eventually(t, func() bool { return len(gateway.sent()) == 2 }, time.Second, time.Millisecond)
	f.hub.Resolve(payments.Settlement{OrderID: gateway.sent()[1].OrderID, Reference: "TXN_TEST", Status: payments.SettlementCompleted})
	f.svc.wg.Wait()

	done, err := f.svc.Get(ctx, co.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
}

func TestSubmitTimesOut(t *testing.T) {
	f := newFixture(t, &manualGateway{}, Config{AttemptTimeout: 20 * time.Millisecond})
	co := f.openCheckout(t)
	f.fillBilling(t, co.ID)

	_, err := f.svc.Submit(context.Background(), co.ID)
	require.NoError(t, err)
	f.svc.wg.Wait()

	done, err := f.svc.Get(context.Background(), co.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, done.Status)
	assert.Equal(t, "payment timed out", done.FailureReason)

	order, err := f.recorder.GetByID(context.Background(), done.OrderID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusFailed, order.Status)
}

func TestSubmitRejectsInvalidBilling(t *testing.T) {
	f := newFixture(t, nil, Config{})
	co := f.openCheckout(t)

	_, err := f.svc.Submit(context.Background(), co.ID)
	ve, ok := apperr.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "name", ve.Field)

	current, err := f.svc.Get(context.Background(), co.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusIdle, current.Status)

	// the lock was released, a corrected submit goes through
	f.fillBilling(t, co.ID)
	res, err := f.svc.Submit(context.Background(), co.ID)
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	f.svc.wg.Wait()
}

func TestCancelDiscardsInFlightAttempt(t *testing.T) {
	gateway := &manualGateway{}
	f := newFixture(t, gateway, Config{})
	co := f.openCheckout(t)
	f.fillBilling(t, co.ID)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, co.ID)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(gateway.sent()) == 1 }, time.Second, time.Millisecond)

	require.NoError(t, f.svc.Cancel(ctx, co.ID))
	f.svc.wg.Wait()

	_, err = f.svc.Get(ctx, co.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, 0, f.publisher.count())

	order, err := f.recorder.GetByID(ctx, gateway.sent()[0].OrderID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusFailed, order.Status)
	assert.Equal(t, "checkout cancelled", order.FailureReason)
}

func TestBeginRegistersAttemptBeforeUnlocking(t *testing.T) {
	f := newFixture(t, &manualGateway{}, Config{})
	co := f.openCheckout(t)
	f.fillBilling(t, co.ID)
	ctx := context.Background()

	session, attemptCtx, cancel, err := f.svc.begin(ctx, co.ID)
	require.NoError(t, err)
	defer cancel()
	assert.Equal(t, StatusProcessing, session.Status)

	f.svc.mu.Lock()
	_, registered := f.svc.inflight[co.ID]
	f.svc.mu.Unlock()
	assert.True(t, registered)

	// a cancel landing right after begin still reaches the attempt
	require.NoError(t, f.svc.Cancel(ctx, co.ID))
	select {
	case <-attemptCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("attempt was not cancelled")
	}
	assert.ErrorIs(t, attemptCtx.Err(), context.Canceled)

	_, ok := f.svc.finish(session, nil, StatusFailed, "checkout cancelled")
	assert.False(t, ok)
}

func TestCheckoutsDoNotBlockEachOther(t *testing.T) {
	f := newFixture(t, nil, Config{})
	first := f.openCheckout(t)
	second := f.openCheckout(t)
	ctx := context.Background()

	unlock := f.svc.locks.Lock(first.ID)

	name := "Otieno"
	other := make(chan error, 1)
	go func() {
		_, err := f.svc.UpdateBilling(ctx, second.ID, BillingUpdateRequest{Name: &name})
		other <- err
	}()
	select {
	case err := <-other:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("update on another checkout waited for the held one")
	}

	same := make(chan error, 1)
	go func() {
		_, err := f.svc.UpdateBilling(ctx, first.ID, BillingUpdateRequest{Name: &name})
		same <- err
	}()
	select {
	case <-same:
		t.Fatal("update ran while its checkout was locked")
	case <-time.After(20 * time.Millisecond):
	}

	unlock()
	select {
	case err := <-same:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("update never ran after unlock")
	}
	assert.Equal(t, 0, f.svc.locks.Len())
}

func TestShutdownCancelsAttempts(t *testing.T) {
	f := newFixture(t, &manualGateway{}, Config{})
	co := f.openCheckout(t)
	f.fillBilling(t, co.ID)

	_, err := f.svc.Submit(context.Background(), co.ID)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, f.svc.Shutdown(ctx), context.DeadlineExceeded)

	done, err := f.svc.Get(context.Background(), co.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, done.Status)
}

func TestCheckoutRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	require.NoError(t, RegisterValidators())

	f := newFixture(t, nil, Config{})
	router := gin.New()
	SetupCheckoutRoutes(router.Group("/api/v1"), NewController(f.svc))

	sel, err := f.selections.Start(context.Background(), "2")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/selections/"+sel.ID+"/checkout", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	_, err = f.selections.SetQuantity(context.Background(), sel.ID, "3", 1)
	require.NoError(t, err)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/selections/"+sel.ID+"/checkout", nil))
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data CheckoutResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Data.ID

	w = httptest.NewRecorder()
	body := `{"name":"Otieno","email":"otieno@example.com","phone":"12345"}`
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/api/v1/checkouts/"+id+"/billing", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/checkouts/"+id+"/validate", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_PHONE")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/api/v1/checkouts/"+id+"/billing", strings.NewReader(`{"payment_method":"bitcoin"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/api/v1/checkouts/"+id+"/billing", strings.NewReader(`{"phone":"254712345678"}`)))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/checkouts/"+id+"/submit", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
	f.svc.wg.Wait()

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/checkouts/"+id, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"completed"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/checkouts/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
