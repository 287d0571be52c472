package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type RateLimitType string

const (
	RateLimitTypeDefault          RateLimitType = "default"
	RateLimitTypePublic           RateLimitType = "public"
	RateLimitTypeSelection        RateLimitType = "selection"
	RateLimitTypeCheckoutCritical RateLimitType = "checkout_critical"
	RateLimitTypeHealth           RateLimitType = "health"
)

type Config struct {
	Enabled                  bool          `json:"enabled"`
	WindowDuration           time.Duration `json:"window_duration"`
	DefaultRequests          int           `json:"default_requests"`
	PublicRequests           int           `json:"public_requests"`
	SelectionRequests        int           `json:"selection_requests"`
	CheckoutCriticalRequests int           `json:"checkout_critical_requests"`
	HealthRequests           int           `json:"health_requests"`
	WhitelistedIPs           []string      `json:"whitelisted_ips"`
}

// Result represents rate limit check result
type Result struct {
	Allowed   bool  `json:"allowed"`
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetTime int64 `json:"reset_time"`
}

// window counts requests per key over a sliding window
type window interface {
	hit(ctx context.Context, key string, limit int, now time.Time, size time.Duration) (count int, allowed bool, err error)
}

// RateLimiter handles rate limiting using Redis, or process memory when
// Redis is not configured
type RateLimiter struct {
	window window
	config *Config
	now    func() time.Time
}

func NewRateLimiter(client *redis.Client, config *Config) *RateLimiter {
	var w window
	if client != nil {
		w = &redisWindow{client: client}
	} else {
		w = newMemoryWindow()
	}
	return &RateLimiter{
		window: w,
		config: config,
		now:    time.Now,
	}
}

// checks if request is allowed
func (r *RateLimiter) IsAllowed(ctx context.Context, clientIP string, limitType RateLimitType) (*Result, error) {
	now := r.now()
	limit := r.getLimit(limitType)
	resetTime := now.Add(r.config.WindowDuration).Unix()

	if !r.config.Enabled || r.isWhitelisted(clientIP) {
		return &Result{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit,
			ResetTime: resetTime,
		}, nil
	}

	key := fmt.Sprintf("tikiti:ratelimit:%s:%s", clientIP, limitType)
	count, allowed, err := r.window.hit(ctx, key, limit, now, r.config.WindowDuration)
	if err != nil {
		return nil, err
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return &Result{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: remaining,
		ResetTime: resetTime,
	}, nil
}

// Lua script for atomic sliding window rate limiting.
// Returns {count, allowed}.
const slidingWindowScript = `
	local key = KEYS[1]
	local window_start = tonumber(ARGV[1])
	local now = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])
	local member = ARGV[5]

	-- Remove old entries
	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	-- Count current requests
	local current_count = redis.call('ZCARD', key)

	-- Check if limit exceeded
	if current_count >= limit then
		redis.call('PEXPIRE', key, window_ms)
		return {current_count, 0}
	end

	-- Add current request
	redis.call('ZADD', key, now, member)
	redis.call('PEXPIRE', key, window_ms)

	return {current_count + 1, 1}
`

var slidingWindow = redis.NewScript(slidingWindowScript)

type redisWindow struct {
	client *redis.Client
}

func (w *redisWindow) hit(ctx context.Context, key string, limit int, now time.Time, size time.Duration) (int, bool, error) {
	windowStart := now.Add(-size)
	member := strconv.FormatInt(now.UnixNano(), 10)

	result, err := slidingWindow.Run(ctx, w.client, []string{key},
		windowStart.UnixMilli(),
		now.UnixMilli(),
		limit,
		size.Milliseconds(),
		member).Int64Slice()
	if err != nil {
		return 0, false, fmt.Errorf("redis eval failed: %w", err)
	}
	if len(result) != 2 {
		return 0, false, fmt.Errorf("unexpected redis response")
	}

	return int(result[0]), result[1] == 1, nil
}

type memoryWindow struct {
	mu   sync.Mutex
	hits map[string][]time.Time
}

func newMemoryWindow() *memoryWindow {
	return &memoryWindow{hits: make(map[string][]time.Time)}
}

func (w *memoryWindow) hit(ctx context.Context, key string, limit int, now time.Time, size time.Duration) (int, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	windowStart := now.Add(-size)
	kept := w.hits[key][:0]
	for _, t := range w.hits[key] {
		if t.After(windowStart) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= limit {
		w.hits[key] = kept
		return len(kept), false, nil
	}

	w.hits[key] = append(kept, now)
	return len(kept) + 1, true, nil
}

func (r *RateLimiter) getLimit(limitType RateLimitType) int {
	switch limitType {
	case RateLimitTypePublic:
		return r.config.PublicRequests
	case RateLimitTypeSelection:
		return r.config.SelectionRequests
	case RateLimitTypeCheckoutCritical:
		return r.config.CheckoutCriticalRequests
	case RateLimitTypeHealth:
		return r.config.HealthRequests
	default:
		return r.config.DefaultRequests
	}
}

func (r *RateLimiter) isWhitelisted(ip string) bool {
	for _, whitelistedIP := range r.config.WhitelistedIPs {
		if ip == whitelistedIP {
			return true
		}
	}
	return false
}
