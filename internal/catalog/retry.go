package catalog

import (
	"context"
	"errors"
	"time"

	"tikiti/internal/shared/apperr"
	"tikiti/pkg/logger"
)

// RetryConfig bounds retries of catalog reads
type RetryConfig struct {
	MaxRetries int
	Backoff    time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxRetries: 3, Backoff: 100 * time.Millisecond}
}

// RetryingProvider retries failed reads with exponential backoff. Reads are
// idempotent; NotFound is an answer, not a failure, and is never retried.
type RetryingProvider struct {
	next  Provider
	cfg   RetryConfig
	log   *logger.Logger
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRetryingProvider(next Provider, cfg RetryConfig, log *logger.Logger) *RetryingProvider {
	return &RetryingProvider{next: next, cfg: cfg, log: log, sleep: sleepContext}
}

func (p *RetryingProvider) ListEvents(ctx context.Context) ([]Event, error) {
	var events []Event
	err := p.do(ctx, "list events", func() error {
		var err error
		events, err = p.next.ListEvents(ctx)
		return err
	})
	return events, err
}

func (p *RetryingProvider) GetEvent(ctx context.Context, id string) (*Event, error) {
	var event *Event
	err := p.do(ctx, "get event", func() error {
		var err error
		event, err = p.next.GetEvent(ctx, id)
		return err
	})
	return event, err
}

func (p *RetryingProvider) do(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		err = fn()
		if err == nil || errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		if attempt == p.cfg.MaxRetries {
			break
		}

		// Exponential backoff
		delay := p.cfg.Backoff * time.Duration(1<<attempt)
		p.log.WarnContext(ctx, "Catalog read failed, retrying",
			"operation", op,
			"attempt", attempt+1,
			"delay", delay,
			"error", err.Error(),
		)
		if sleepErr := p.sleep(ctx, delay); sleepErr != nil {
			return sleepErr
		}
	}
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
