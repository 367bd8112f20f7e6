package crawler

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// adaptiveMinRate is the floor the adaptive limiter will never drop
	// below, so a single bad RTT run can't stall the crawl.
	adaptiveMinRate = 0.1

	// emaAlpha is the EMA smoothing factor for RTT observations: lower
	// means slower to react to changes.
	emaAlpha = 0.2

	// recoveryFactor is the per-good-RTT rate increase (10%).
	recoveryFactor = 1.1

	// backoffFactor bounds how much the rate can drop in a single step.
	backoffFactor = 0.5
)

// AdaptiveRateLimiter is an alternate RateLimiter that self-tunes its
// rate from observed response times instead of a fixed budget. It
// satisfies the same RateLimiter interface as TokenBucket so the
// engine can use either interchangeably; callers that want adaptation
// must also call ObserveRTT after each fetch (the engine does this
// automatically when the configured limiter implements rttObserver).
type AdaptiveRateLimiter struct {
	mu          sync.RWMutex
	limiter     *rate.Limiter
	targetRTT   time.Duration
	emaRTT      time.Duration
	currentRate float64
	maxRate     float64
	disabled    bool
}

// rttObserver is implemented by rate limiters that want to see
// completed-request latency. The engine type-asserts for it after
// every fetch.
type rttObserver interface {
	ObserveRTT(rtt time.Duration)
}

// NewAdaptiveRateLimiter creates an adaptive limiter starting at
// initialRate tokens/second, targeting targetRTT response times, never
// exceeding maxRate.
func NewAdaptiveRateLimiter(initialRate float64, targetRTT time.Duration, maxRate float64) (*AdaptiveRateLimiter, error) {
	if initialRate <= 0 {
		return nil, fmt.Errorf("%w: rate must be positive, got %v", ErrInvalidArgument, initialRate)
	}
	if maxRate < initialRate {
		maxRate = initialRate
	}
	return &AdaptiveRateLimiter{
		limiter:     rate.NewLimiter(rate.Limit(initialRate), int(math.Ceil(initialRate))),
		targetRTT:   targetRTT,
		emaRTT:      targetRTT,
		currentRate: initialRate,
		maxRate:     maxRate,
	}, nil
}

// Acquire blocks until the underlying limiter admits the next request.
func (a *AdaptiveRateLimiter) Acquire(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// SetRate manually overrides the rate and disables further adaptation
// until EnableAdaptation is called (used when robots.txt's Crawl-delay
// sets an explicit floor per §4.6 step 3).
func (a *AdaptiveRateLimiter) SetRate(r float64) error {
	if r <= 0 {
		return fmt.Errorf("%w: rate must be positive, got %v", ErrInvalidArgument, r)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.currentRate = r
	a.disabled = true
	a.limiter.SetLimit(rate.Limit(r))
	a.limiter.SetBurst(int(math.Ceil(r)))
	return nil
}

// EnableAdaptation re-enables RTT-driven rate adjustment after a
// manual SetRate override.
func (a *AdaptiveRateLimiter) EnableAdaptation() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.disabled = false
}

// ObserveRTT records a completed request's latency and adjusts the
// rate by an EMA-smoothed ratio of target to observed RTT.
func (a *AdaptiveRateLimiter) ObserveRTT(rtt time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.disabled {
		return
	}

	newEMA := time.Duration(emaAlpha*float64(rtt) + (1-emaAlpha)*float64(a.emaRTT))
	a.emaRTT = newEMA

	ratio := float64(a.targetRTT) / float64(newEMA)

	var newRate float64
	if ratio < 1 {
		proposed := a.currentRate * ratio
		floor := a.currentRate * backoffFactor
		if proposed < floor {
			newRate = floor
		} else {
			newRate = proposed
		}
	} else {
		newRate = a.currentRate * recoveryFactor
	}

	newRate = clampAdaptiveRate(newRate, a.maxRate)

	if math.Abs(newRate-a.currentRate) > 0.01 {
		a.currentRate = newRate
		a.limiter.SetLimit(rate.Limit(newRate))
		a.limiter.SetBurst(int(math.Ceil(newRate)))
	}
}

// CurrentRate returns the current rate in tokens/second.
func (a *AdaptiveRateLimiter) CurrentRate() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.currentRate
}

func clampAdaptiveRate(r, max float64) float64 {
	if r < adaptiveMinRate {
		return adaptiveMinRate
	}
	if r > max {
		return max
	}
	return r
}
