package collector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestDefaultSearchLimiters_SeparateBuckets(t *testing.T) {
	limiters := DefaultSearchLimiters()
	require.NotSame(t, limiters.Code, limiters.Repositories)

	limiters.Code.UpdateLimit(0, time.Now().Add(time.Minute))

	codeRemaining, _, _ := limiters.Code.CheckLimit()
	repoRemaining, _, _ := limiters.Repositories.CheckLimit()
	assert.Equal(t, 0, codeRemaining)
	assert.Equal(t, SearchRateLimit, repoRemaining)
}

func TestRateLimiter_RefillsToItsOwnQuota(t *testing.T) {
	limiter := NewRateLimiter(rate.Inf, 1, CodeSearchRateLimit)
	limiter.UpdateLimit(0, time.Now().Add(-time.Second))

	require.NoError(t, limiter.Wait(context.Background()))
	remaining, reset, err := limiter.CheckLimit()
	require.NoError(t, err)
	assert.Equal(t, CodeSearchRateLimit, remaining)
	assert.True(t, reset.After(time.Now()))
}

func TestRateLimiter_WaitHonoursContext(t *testing.T) {
	limiter := NewRateLimiter(rate.Inf, 1, SearchRateLimit)
	limiter.UpdateLimit(0, time.Now().Add(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, limiter.Wait(ctx), context.DeadlineExceeded)
}
