package collector

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	// SearchRateLimit is the authenticated repository search quota per minute
	SearchRateLimit = 30

	// CodeSearchRateLimit is the authenticated code search quota per minute, a separate bucket
	CodeSearchRateLimit = 10

	// DefaultSearchRate spreads the repository search quota evenly across the minute
	DefaultSearchRate = rate.Limit(float64(SearchRateLimit) / 60)

	// DefaultCodeSearchRate spreads the code search quota evenly across the minute
	DefaultCodeSearchRate = rate.Limit(float64(CodeSearchRateLimit) / 60)

	// minRemaining is the number of requests kept in reserve before waiting for reset
	minRemaining = 1
)

// RateLimiter manages GitHub Search API rate limiting
type RateLimiter interface {
	Wait(ctx context.Context) error
	CheckLimit() (remaining int, resetTime time.Time, err error)
	UpdateLimit(remaining int, resetTime time.Time)
}

// SearchLimiters holds one limiter per search kind; GitHub meters each kind in its own bucket
type SearchLimiters struct {
	Code         RateLimiter
	Repositories RateLimiter
}

// DefaultSearchLimiters paces each search kind at its own quota
func DefaultSearchLimiters() SearchLimiters {
	return SearchLimiters{
		Code:         NewRateLimiter(DefaultCodeSearchRate, 1, CodeSearchRateLimit),
		Repositories: NewRateLimiter(DefaultSearchRate, 1, SearchRateLimit),
	}
}

// githubRateLimiter throttles proactively with a token bucket and reactively from response headers
type githubRateLimiter struct {
	mu        sync.Mutex
	quota     int
	remaining int
	resetTime time.Time
	bucket    *rate.Limiter
}

// NewRateLimiter creates a new rate limiter allowing limit requests per second
// out of a quota refilled every minute
func NewRateLimiter(limit rate.Limit, burst, quota int) RateLimiter {
	return &githubRateLimiter{
		quota:     quota,
		remaining: quota,
		resetTime: time.Now().Add(time.Minute),
		bucket:    rate.NewLimiter(limit, burst),
	}
}

// Wait waits until it's safe to make another API call
func (r *githubRateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	remaining := r.remaining
	resetTime := r.resetTime
	r.mu.Unlock()

	if remaining < minRemaining {
		if waitDuration := time.Until(resetTime); waitDuration > 0 {
			logrus.WithFields(logrus.Fields{
				"remaining": remaining,
				"wait":      waitDuration.Round(time.Second),
			}).Info("search quota exhausted, waiting until reset")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitDuration):
			}
		}
		r.mu.Lock()
		r.remaining = r.quota
		r.resetTime = time.Now().Add(time.Minute)
		r.mu.Unlock()
	}
	return nil
}

// CheckLimit returns the current rate limit status
func (r *githubRateLimiter) CheckLimit() (remaining int, resetTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining, r.resetTime, nil
}

// UpdateLimit updates the rate limit from API response headers
func (r *githubRateLimiter) UpdateLimit(remaining int, resetTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remaining = remaining
	r.resetTime = resetTime
}
