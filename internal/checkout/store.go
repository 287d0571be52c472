package checkout

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

type cacheStore struct {
	cache cache.Service
	ttl   time.Duration
}

// NewStore keeps checkout sessions in the cache service, Redis or in-memory
func NewStore(c cache.Service, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = constants.TTL_SESSION_DEFAULT
	}
	return &cacheStore{cache: c, ttl: ttl}
}

func (s *cacheStore) Save(ctx context.Context, session *Session) error {
	if err := s.cache.Set(ctx, constants.BuildCheckoutKey(session.ID), session, s.ttl); err != nil {
		return fmt.Errorf("failed to save checkout: %w", err)
	}
	return nil
}

func (s *cacheStore) Get(ctx context.Context, id string) (*Session, error) {
	var session Session
	if err := s.cache.Get(ctx, constants.BuildCheckoutKey(id), &session); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, apperr.NotFound("checkout", id)
		}
		return nil, fmt.Errorf("failed to load checkout: %w", err)
	}
	return &session, nil
}

func (s *cacheStore) Delete(ctx context.Context, id string) error {
	if err := s.cache.Delete(ctx, constants.BuildCheckoutKey(id)); err != nil {
		return fmt.Errorf("failed to delete checkout: %w", err)
	}
	return nil
}

// Locker guards a checkout against concurrent submits
type Locker interface {
	// Acquire reports false when another submit already holds the lock
	Acquire(ctx context.Context, checkoutID string) (bool, error)
	Release(ctx context.Context, checkoutID string) error
}

type cacheLocker struct {
	cache cache.Service
	ttl   time.Duration
}

// NewLocker builds a SET NX lock that expires after ttl if never released
func NewLocker(c cache.Service, ttl time.Duration) Locker {
	if ttl <= 0 {
		ttl = constants.TTL_SUBMIT_LOCK
	}
	return &cacheLocker{cache: c, ttl: ttl}
}

func (l *cacheLocker) Acquire(ctx context.Context, checkoutID string) (bool, error) {
	ok, err := l.cache.SetNX(ctx, constants.BuildSubmitLockKey(checkoutID), time.Now().UTC(), l.ttl)
	if err != nil {
		return false, fmt.Errorf("failed to acquire submit lock: %w", err)
	}
	return ok, nil
}

func (l *cacheLocker) Release(ctx context.Context, checkoutID string) error {
	if err := l.cache.Delete(ctx, constants.BuildSubmitLockKey(checkoutID)); err != nil {
		return fmt.Errorf("failed to release submit lock: %w", err)
	}
	return nil
}
