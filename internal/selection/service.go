package selection

import (
	"context"
	"fmt"
	"time"

	"tikiti/internal/catalog"
	"tikiti/internal/shared/apperr"
	"tikiti/internal/shared/keylock"

	"github.com/google/uuid"
)

type Service interface {
	Start(ctx context.Context, eventID string) (*SelectionResponse, error)
	Get(ctx context.Context, id string) (*SelectionResponse, error)
	SetQuantity(ctx context.Context, id, categoryID string, quantity int) (*SelectionResponse, error)
	// Increment adds one ticket of a category
	Increment(ctx context.Context, id, categoryID string) (*SelectionResponse, error)
	// Cart snapshots the selection for checkout. The session stays alive so
	// the buyer can come back and update the cart.
	Cart(ctx context.Context, id string) (*catalog.Event, []CartItem, error)
	Discard(ctx context.Context, id string) error
}

type service struct {
	catalog catalog.Service
	store   Store
	now     func() time.Time
	newID   func() string

	// serializes read-modify-write of one session within this process
	locks keylock.Mutex
}

func NewService(catalogService catalog.Service, store Store) Service {
	return &service{
		catalog: catalogService,
		store:   store,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func (s *service) Start(ctx context.Context, eventID string) (*SelectionResponse, error) {
	event, err := s.catalog.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	session := &Session{
		ID:         s.newID(),
		EventID:    event.ID,
		Quantities: Quantities{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return Summarize(session, event), nil
}

func (s *service) Get(ctx context.Context, id string) (*SelectionResponse, error) {
	session, event, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return Summarize(session, event), nil
}

func (s *service) SetQuantity(ctx context.Context, id, categoryID string, quantity int) (*SelectionResponse, error) {
	return s.update(ctx, id, categoryID, func(current int) int { return quantity })
}

func (s *service) Increment(ctx context.Context, id, categoryID string) (*SelectionResponse, error) {
	return s.update(ctx, id, categoryID, func(current int) int { return current + 1 })
}

func (s *service) update(ctx context.Context, id, categoryID string, next func(current int) int) (*SelectionResponse, error) {
	defer s.locks.Lock(id)()

	session, event, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, ok := event.Category(categoryID); !ok {
		return nil, apperr.NotFound("category", categoryID)
	}

	requested := next(session.Quantities[categoryID])
	if requested > MaxQuantity {
		return nil, apperr.OutOfRange("quantity")
	}

	session.Quantities = SetQuantity(session.Quantities, categoryID, requested)
	session.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return Summarize(session, event), nil
}

func (s *service) Cart(ctx context.Context, id string) (*catalog.Event, []CartItem, error) {
	session, event, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	items, err := BuildCart(event, session.Quantities)
	if err != nil {
		return nil, nil, fmt.Errorf("selection %s: %w", id, err)
	}
	return event, items, nil
}

func (s *service) Discard(ctx context.Context, id string) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

func (s *service) load(ctx context.Context, id string) (*Session, *catalog.Event, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	event, err := s.catalog.GetEvent(ctx, session.EventID)
	if err != nil {
		return nil, nil, err
	}
	return session, event, nil
}
