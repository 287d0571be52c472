package selection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tikiti/internal/shared/apperr"
	"tikiti/internal/shared/constants"
	"tikiti/pkg/cache"
)

type Store interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// cacheStore keeps sessions in the cache service, Redis or in-memory, with
// a sliding TTL refreshed on every save
type cacheStore struct {
	cache cache.Service
	ttl   time.Duration
}

func NewStore(c cache.Service, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = constants.TTL_SESSION_DEFAULT
	}
	return &cacheStore{cache: c, ttl: ttl}
}

func (s *cacheStore) Save(ctx context.Context, session *Session) error {
	if err := s.cache.Set(ctx, constants.BuildSelectionKey(session.ID), session, s.ttl); err != nil {
		return fmt.Errorf("failed to save selection: %w", err)
	}
	return nil
}

func (s *cacheStore) Get(ctx context.Context, id string) (*Session, error) {
	var session Session
	if err := s.cache.Get(ctx, constants.BuildSelectionKey(id), &session); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, apperr.NotFound("selection", id)
		}
		return nil, fmt.Errorf("failed to load selection: %w", err)
	}
	if session.Quantities == nil {
		session.Quantities = Quantities{}
	}
	return &session, nil
}

func (s *cacheStore) Delete(ctx context.Context, id string) error {
	if err := s.cache.Delete(ctx, constants.BuildSelectionKey(id)); err != nil {
		return fmt.Errorf("failed to delete selection: %w", err)
	}
	return nil
}
