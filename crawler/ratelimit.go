package crawler

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RateLimiter is the optional rate-limiting port the engine calls
// before every fetch. When absent from an Engine's options, no
// throttling is applied.
type RateLimiter interface {
	// Acquire blocks until a token is available or ctx is done.
	Acquire(ctx context.Context) error
	// SetRate updates the refill rate in tokens/second. r must be > 0.
	SetRate(r float64) error
}

// TokenBucket is the canonical rate limiter described in §4.3: a token
// bucket whose capacity equals its rate, refilled continuously and
// consumed one token per Acquire. Refill and consume happen under a
// single mutex; a caller that finds no token available releases the
// lock before sleeping, so it never blocks other callers' refills.
type TokenBucket struct {
	mu         sync.Mutex
	rate       float64
	capacity   float64
	tokens     float64
	lastRefill time.Time
	now        func() time.Time
}

// NewTokenBucket creates a token bucket with the given rate (tokens
// per second, must be > 0). Capacity equals rate, so up to rate
// immediate acquisitions succeed before throttling engages.
func NewTokenBucket(rate float64) (*TokenBucket, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("%w: rate must be positive, got %v", ErrInvalidArgument, rate)
	}
	return &TokenBucket{
		rate:       rate,
		capacity:   rate,
		tokens:     rate,
		lastRefill: time.Now(),
		now:        time.Now,
	}, nil
}

// Acquire blocks until one token is available, then consumes it.
func (b *TokenBucket) Acquire(ctx context.Context) error {
	for {
		b.mu.Lock()
		now := b.now()
		elapsed := now.Sub(b.lastRefill)
		b.tokens = min(b.capacity, b.tokens+elapsed.Seconds()*b.rate)
		b.lastRefill = now

		if b.tokens >= 1 {
			b.tokens--
			b.mu.Unlock()
			return nil
		}
		rate := b.rate
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(float64(time.Second) / rate)):
		}
	}
}

// SetRate atomically updates the rate and capacity. The current token
// count is clamped to the new capacity on the next refill.
func (b *TokenBucket) SetRate(r float64) error {
	if r <= 0 {
		return fmt.Errorf("%w: rate must be positive, got %v", ErrInvalidArgument, r)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rate = r
	b.capacity = r
	return nil
}

// Rate returns the current rate in tokens/second.
func (b *TokenBucket) Rate() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rate
}
