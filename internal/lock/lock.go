// Package lock provides a best-effort Redis mutex so a manual trigger and
// the scheduled worker never run overlapping sweeps.
package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kbtale/lease-sentinel/internal/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// release only if we still hold the token
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`

// SweepLock serializes sweeps across processes. The TTL bounds the worst
// hold if a holder dies without releasing.
type SweepLock struct {
	rds *redis.Client
	key string
	ttl time.Duration
}

// NewSweepLock builds the lock. A nil client degrades to unguarded: every
// TryLock succeeds with a no-op release.
func NewSweepLock(rds *redis.Client, key string, ttl time.Duration) *SweepLock {
	if key == "" {
		key = "sweep:lock"
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SweepLock{rds: rds, key: key, ttl: ttl}
}

// TryLock attempts to take the lock without blocking. On success it returns
// a release func and true; false means another sweep holds it. Redis errors
// are downgraded to unguarded so an unavailable Redis never stops dispatch.
func (l *SweepLock) TryLock(ctx context.Context) (func(), bool) {
	if l == nil || l.rds == nil {
		return func() {}, true
	}

	token := uuid.NewString()
	ok, err := l.rds.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		logger.Log.Warn("sweep lock unavailable, proceeding unguarded", zap.Error(err))
		return func() {}, true
	}
	if !ok {
		return nil, false
	}

	release := func() {
		if err := l.rds.Eval(context.Background(), releaseScript, []string{l.key}, token).Err(); err != nil {
			logger.Log.Warn("sweep lock release failed", zap.Error(err))
		}
	}
	return release, true
}
