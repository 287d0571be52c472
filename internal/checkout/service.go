package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tikiti/internal/catalog"
	"tikiti/internal/notifications"
	"tikiti/internal/orders"
	"tikiti/internal/selection"
	"tikiti/internal/shared/apperr"
	"tikiti/internal/shared/keylock"
	"tikiti/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	// Open freezes a cart into a new checkout session
	Open(ctx context.Context, event *catalog.Event, cart []selection.CartItem) (*CheckoutResponse, error)
	OpenFromSelection(ctx context.Context, selectionID string) (*CheckoutResponse, error)
	Get(ctx context.Context, id string) (*CheckoutResponse, error)
	UpdateBilling(ctx context.Context, id string, req BillingUpdateRequest) (*CheckoutResponse, error)
	Validate(ctx context.Context, id string) (*CheckoutResponse, error)
	// Submit starts one payment attempt in the background. A submit while
	// another is processing is dropped and reported with accepted=false.
	Submit(ctx context.Context, id string) (*SubmitResponse, error)
	// Cancel abandons the checkout and any attempt in flight
	Cancel(ctx context.Context, id string) error
	// Shutdown waits for attempts in flight, cancelling them when ctx ends
	Shutdown(ctx context.Context) error
}

type Config struct {
	EnabledMethods []PaymentMethod
	StrictEmail    bool
	// AttemptTimeout bounds one submit from order creation to settlement
	AttemptTimeout time.Duration
}

type service struct {
	selections selection.Service
	store      Store
	locker     Locker
	composer   *Composer
	publisher  notifications.Publisher
	cfg        Config
	log        *logger.Logger
	now        func() time.Time
	newID      func() string

	// locks serialises reads and writes of one checkout session
	locks keylock.Mutex
	// mu guards inflight only and is never held across store calls
	mu       sync.Mutex
	inflight map[string]context.CancelFunc
	wg       sync.WaitGroup
}

func NewService(selections selection.Service, store Store, locker Locker, composer *Composer, publisher notifications.Publisher, cfg Config, log *logger.Logger) Service {
	if len(cfg.EnabledMethods) == 0 {
		cfg.EnabledMethods = []PaymentMethod{PaymentMethodMpesa}
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = time.Minute
	}
	return &service{
		selections: selections,
		store:      store,
		locker:     locker,
		composer:   composer,
		publisher:  publisher,
		cfg:        cfg,
		log:        log,
		now:        time.Now,
		newID:      uuid.NewString,
		inflight:   make(map[string]context.CancelFunc),
	}
}

func (s *service) Open(ctx context.Context, event *catalog.Event, cart []selection.CartItem) (*CheckoutResponse, error) {
	session, err := s.open(ctx, event, cart, "")
	if err != nil {
		return nil, err
	}
	return s.respond(session), nil
}

func (s *service) OpenFromSelection(ctx context.Context, selectionID string) (*CheckoutResponse, error) {
	event, cart, err := s.selections.Cart(ctx, selectionID)
	if err != nil {
		return nil, err
	}
	session, err := s.open(ctx, event, cart, selectionID)
	if err != nil {
		return nil, err
	}
	return s.respond(session), nil
}

func (s *service) open(ctx context.Context, event *catalog.Event, cart []selection.CartItem, selectionID string) (*Session, error) {
	if event == nil {
		return nil, apperr.NotFound("event", "")
	}
	if len(cart) == 0 {
		return nil, apperr.ErrEmptySelection
	}

	now := s.now().UTC()
	session := &Session{
		ID:          s.newID(),
		SelectionID: selectionID,
		Event:       snapshotEvent(event),
		Items:       append([]selection.CartItem(nil), cart...),
		Total:       selection.CartTotal(cart),
		Currency:    cart[0].Currency,
		Billing:     BillingDetails{PaymentMethod: s.cfg.EnabledMethods[0]},
		Status:      StatusIdle,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}

	s.log.LogCheckoutStarted(ctx, session.ID, event.ID, len(cart))
	return session, nil
}

func (s *service) Get(ctx context.Context, id string) (*CheckoutResponse, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.respond(session), nil
}

func (s *service) UpdateBilling(ctx context.Context, id string, req BillingUpdateRequest) (*CheckoutResponse, error) {
	defer s.locks.Lock(id)()

	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	switch session.Status {
	case StatusCompleted:
		return nil, apperr.ErrCheckoutCompleted
	case StatusProcessing:
		return nil, apperr.ErrCheckoutProcessing
	}

	if req.Name != nil {
		session.Billing.Name = *req.Name
	}
	if req.Email != nil {
		session.Billing.Email = *req.Email
	}
	if req.Phone != nil {
		session.Billing.Phone = *req.Phone
	}
	if req.PaymentMethod != nil {
		method, err := ParsePaymentMethod(*req.PaymentMethod)
		if err != nil {
			return nil, err
		}
		if !s.methodEnabled(method) {
			return nil, fmt.Errorf("%s: %w", method.DisplayName(), apperr.ErrPaymentMethodUnavailable)
		}
		session.Billing.PaymentMethod = method
	}

	session.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return s.respond(session), nil
}

func (s *service) Validate(ctx context.Context, id string) (*CheckoutResponse, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.check(session); err != nil {
		return nil, err
	}
	return s.respond(session), nil
}

func (s *service) Submit(ctx context.Context, id string) (*SubmitResponse, error) {
	acquired, err := s.locker.Acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return s.dropped(ctx, id)
	}

	session, attemptCtx, cancel, err := s.begin(ctx, id)
	if err != nil {
		s.release(id)
		if errors.Is(err, apperr.ErrCheckoutProcessing) {
			return s.dropped(ctx, id)
		}
		return nil, err
	}

	s.log.LogOrderSubmitted(ctx, id, session.Attempt, session.Total.Format(session.Currency))

	s.wg.Add(1)
	go s.run(attemptCtx, cancel, session)

	return &SubmitResponse{Accepted: true, Checkout: s.respond(session)}, nil
}

// begin checks the session, moves it into processing and registers the
// attempt as in flight before the checkout is unlocked, so a Cancel can
// always reach it.
func (s *service) begin(ctx context.Context, id string) (*Session, context.Context, context.CancelFunc, error) {
	defer s.locks.Lock(id)()

	session, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	switch session.Status {
	case StatusCompleted:
		return nil, nil, nil, apperr.ErrCheckoutCompleted
	case StatusProcessing:
		return nil, nil, nil, apperr.ErrCheckoutProcessing
	}
	if err := s.check(session); err != nil {
		return nil, nil, nil, err
	}

	session.Attempt++
	session.OrderID = ""
	session.OrderReference = ""
	session.FailureReason = ""
	if err := session.transition(StatusProcessing, "", s.now().UTC()); err != nil {
		return nil, nil, nil, err
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, nil, nil, err
	}

	attemptCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.AttemptTimeout)
	s.mu.Lock()
	s.inflight[id] = cancel
	s.mu.Unlock()
	return session, attemptCtx, cancel, nil
}

// run drives one attempt to exactly one terminal transition
func (s *service) run(ctx context.Context, cancel context.CancelFunc, snapshot *Session) {
	defer s.wg.Done()
	defer cancel()
	defer s.release(snapshot.ID)

	outcome, err := s.composer.SubmitOrder(ctx, snapshot.ID, snapshot.Event, snapshot.Items, snapshot.Billing)

	next, reason := StatusCompleted, ""
	if err != nil || outcome == nil || outcome.Status != orders.StatusCompleted {
		next = StatusFailed
		switch {
		case outcome != nil && outcome.Reason != "":
			reason = outcome.Reason
		case err != nil:
			reason = err.Error()
		default:
			reason = "order could not be completed"
		}
	}

	orderID := ""
	if outcome != nil {
		orderID = outcome.OrderID
	}
	s.log.LogOrderOutcome(context.Background(), snapshot.ID, orderID, string(next), reason)

	session, ok := s.finish(snapshot, outcome, next, reason)
	if ok && next == StatusCompleted {
		s.notify(session, outcome)
	}
}

// finish records the terminal transition. It reports false when the
// checkout was cancelled while the attempt ran.
func (s *service) finish(snapshot *Session, outcome *Outcome, next Status, reason string) (*Session, bool) {
	ctx := context.Background()

	defer s.locks.Lock(snapshot.ID)()

	s.mu.Lock()
	_, ok := s.inflight[snapshot.ID]
	delete(s.inflight, snapshot.ID)
	s.mu.Unlock()
	if !ok {
		return nil, false
	}

	session, err := s.store.Get(ctx, snapshot.ID)
	if err != nil {
		s.log.WarnContext(ctx, "Checkout gone before attempt finished", "checkout_id", snapshot.ID, "error", err)
		return nil, false
	}
	if session.Status != StatusProcessing || session.Attempt != snapshot.Attempt {
		return nil, false
	}

	if outcome != nil {
		session.OrderID = outcome.OrderID
		session.OrderReference = outcome.OrderReference
	}
	session.FailureReason = reason
	if err := session.transition(next, reason, s.now().UTC()); err != nil {
		s.log.ErrorContext(ctx, "Failed to finish checkout", "checkout_id", session.ID, "error", err)
		return nil, false
	}
	if err := s.store.Save(ctx, session); err != nil {
		s.log.ErrorContext(ctx, "Failed to save checkout outcome", "checkout_id", session.ID, "error", err)
		return nil, false
	}
	return session, true
}

func (s *service) notify(session *Session, outcome *Outcome) {
	builder := notifications.NewNotificationBuilder().
		WithType(notifications.NotificationTypeOrderCompleted).
		WithOrder(outcome.OrderID, outcome.OrderReference, session.Total, session.Currency).
		WithEvent(session.Event.ID, session.Event.Title).
		WithRecipient(session.Billing.Email, session.Billing.Name, session.Billing.Phone)
	for _, item := range session.Items {
		builder.WithTicket(item.CategoryName, item.Quantity, item.UnitPrice)
	}

	if err := s.publisher.Publish(context.Background(), builder.Build()); err != nil {
		s.log.ErrorContext(context.Background(), "Failed to publish order notification",
			"order_id", outcome.OrderID,
			"error", err,
		)
	}
}

func (s *service) Cancel(ctx context.Context, id string) error {
	defer s.locks.Lock(id)()

	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	if cancel, ok := s.inflight[id]; ok {
		cancel()
		delete(s.inflight, id)
	}
	s.mu.Unlock()
	return s.store.Delete(ctx, id)
}

func (s *service) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		for _, cancel := range s.inflight {
			cancel()
		}
		s.mu.Unlock()
		<-done
		return ctx.Err()
	}
}

func (s *service) dropped(ctx context.Context, id string) (*SubmitResponse, error) {
	s.log.LogSubmitDropped(ctx, id)
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &SubmitResponse{Accepted: false, Checkout: s.respond(session)}, nil
}

func (s *service) release(id string) {
	if err := s.locker.Release(context.Background(), id); err != nil {
		s.log.WarnContext(context.Background(), "Failed to release submit lock", "checkout_id", id, "error", err)
	}
}

// check runs billing validation plus the checks that depend on configuration
func (s *service) check(session *Session) error {
	if len(session.Items) == 0 {
		return apperr.ErrEmptySelection
	}
	if err := Validate(session.Billing, ValidateOptions{StrictEmail: s.cfg.StrictEmail}); err != nil {
		return err
	}
	if !s.methodEnabled(session.Billing.PaymentMethod) {
		return fmt.Errorf("%s: %w", session.Billing.PaymentMethod.DisplayName(), apperr.ErrPaymentMethodUnavailable)
	}
	return nil
}

func (s *service) methodEnabled(m PaymentMethod) bool {
	for _, enabled := range s.cfg.EnabledMethods {
		if enabled == m {
			return true
		}
	}
	return false
}

func (s *service) load(ctx context.Context, id string) (*Session, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.Valid() {
		return nil, fmt.Errorf("invalid checkout session: %w", apperr.NotFound("checkout", id))
	}
	return session, nil
}

func (s *service) respond(session *Session) *CheckoutResponse {
	return toResponse(session, s.cfg.EnabledMethods)
}
