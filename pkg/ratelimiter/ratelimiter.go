package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"anoa.com/alienvault/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	ScopeGlobal     = "global"
	ScopeDiscussion = "discussion"
	ScopeAnswer     = "answer"
	ScopeReply      = "reply"
	ScopeFeedback   = "feedback"
	ScopeDocument   = "document"
)

// RateLimitError tells the caller how long to back off.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

func (e *RateLimitError) Unwrap() error {
	return apperror.ErrRateLimitExceeded
}

func key(userID uuid.UUID, scope string) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), scope)
}

// CheckAndSetRateLimit claims the cooldown slot for (user, scope). It reports
// false when the slot is already taken. A nil client allows everything.
func CheckAndSetRateLimit(ctx context.Context, rdb *redis.Client, userID uuid.UUID, scope string, limit time.Duration) (bool, error) {
	if rdb == nil || limit <= 0 {
		return true, nil
	}

	wasSet, err := rdb.SetNX(ctx, key(userID, scope), "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	return wasSet, nil
}

func GetRateLimitTTL(ctx context.Context, rdb *redis.Client, userID uuid.UUID, scope string) (time.Duration, error) {
	if rdb == nil {
		return 0, nil
	}
	return rdb.TTL(ctx, key(userID, scope)).Result()
}

func ClearRateLimit(ctx context.Context, rdb *redis.Client, userID uuid.UUID, scope string) error {
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx, key(userID, scope)).Err()
}

// Limiter bundles the global cooldown with a per-action cooldown.
type Limiter struct {
	rdb    *redis.Client
	global time.Duration
	scopes map[string]time.Duration
}

func NewLimiter(rdb *redis.Client, global time.Duration, scopes map[string]time.Duration) *Limiter {
	if scopes == nil {
		scopes = map[string]time.Duration{}
	}
	return &Limiter{rdb: rdb, global: global, scopes: scopes}
}

// Acquire claims both the global and the scoped slot. The returned release
// function gives the slots back; callers invoke it when the guarded write fails.
func (l *Limiter) Acquire(ctx context.Context, userID uuid.UUID, scope string) (func(), error) {
	noop := func() {}
	if l == nil || l.rdb == nil {
		return noop, nil
	}

	allowed, err := CheckAndSetRateLimit(ctx, l.rdb, userID, ScopeGlobal, l.global)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		ttl, _ := GetRateLimitTTL(ctx, l.rdb, userID, ScopeGlobal)
		return nil, &RateLimitError{
			Message:    fmt.Sprintf("you are doing that too fast. Please wait %.0f seconds", ttl.Seconds()),
			RetryAfter: ttl,
		}
	}

	limit := l.scopes[scope]
	allowed, err = CheckAndSetRateLimit(ctx, l.rdb, userID, scope, limit)
	if err != nil {
		_ = ClearRateLimit(ctx, l.rdb, userID, ScopeGlobal)
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		_ = ClearRateLimit(ctx, l.rdb, userID, ScopeGlobal)
		ttl, _ := GetRateLimitTTL(ctx, l.rdb, userID, scope)
		return nil, &RateLimitError{
			Message:    fmt.Sprintf("you can only create one %s every %.0f seconds. Please wait %.0f seconds", scope, limit.Seconds(), ttl.Seconds()),
			RetryAfter: ttl,
		}
	}

	return func() {
		_ = ClearRateLimit(context.Background(), l.rdb, userID, ScopeGlobal)
		_ = ClearRateLimit(context.Background(), l.rdb, userID, scope)
	}, nil
}
