package catalog

import (
	"context"

	"tikiti/internal/shared/constants"
	"tikiti/pkg/cache"
)

type Service interface {
	ListEvents(ctx context.Context) ([]Event, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	// Invalidate drops every cached catalog entry, after a reseed
	Invalidate(ctx context.Context) error
}

type service struct {
	provider     Provider
	cacheService cache.Service
}

// NewService serves events from provider through a cache-aside layer.
// cacheService may be nil, in which case every read hits the provider.
func NewService(provider Provider, cacheService cache.Service) Service {
	return &service{provider: provider, cacheService: cacheService}
}

func (s *service) ListEvents(ctx context.Context) ([]Event, error) {
	if s.cacheService == nil {
		return s.provider.ListEvents(ctx)
	}

	var events []Event
	err := s.cacheService.GetOrSet(ctx, constants.CACHE_KEY_EVENTS_LIST, constants.TTL_EVENT_LIST,
		func() (interface{}, error) {
			return s.provider.ListEvents(ctx)
		}, &events)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (s *service) GetEvent(ctx context.Context, id string) (*Event, error) {
	if s.cacheService == nil {
		return s.provider.GetEvent(ctx, id)
	}

	var event Event
	err := s.cacheService.GetOrSet(ctx, constants.BuildEventDetailKey(id), constants.TTL_EVENT_DETAIL,
		func() (interface{}, error) {
			return s.provider.GetEvent(ctx, id)
		}, &event)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *service) Invalidate(ctx context.Context) error {
	if s.cacheService == nil {
		return nil
	}
	return s.cacheService.DeletePattern(ctx, constants.PATTERN_INVALIDATE_CATALOG_ALL)
}
