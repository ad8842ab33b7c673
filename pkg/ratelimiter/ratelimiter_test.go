package ratelimiter

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"anoa.com/alienvault/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireWithoutRedisAllowsEverything(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	var nilLimiter *Limiter
	release, err := nilLimiter.Acquire(ctx, userID, ScopeAnswer)
	require.NoError(t, err)
	release()

	l := NewLimiter(nil, time.Minute, map[string]time.Duration{ScopeAnswer: time.Hour})
	for i := 0; i < 3; i++ {
		release, err := l.Acquire(ctx, userID, ScopeAnswer)
		require.NoError(t, err)
		require.NotNil(t, release)
	}
}

func TestRateLimitErrorMapsTo429(t *testing.T) {
	err := error(&RateLimitError{Message: "slow down", RetryAfter: 3 * time.Second})

	assert.True(t, errors.Is(err, apperror.ErrRateLimitExceeded))
	assert.Equal(t, http.StatusTooManyRequests, apperror.MapErrorToStatus(err))
	assert.Equal(t, "rate_limit:user:"+uuid.Nil.String()+":reply", key(uuid.Nil, ScopeReply))
}
