package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/Darlington720/library-module/pkg/errors"
)

// ActionGuard keeps at most one submission in flight per key.
type ActionGuard interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type lockStore interface {
	Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, token string) error
}

// NewActionGuard returns a Redis backed guard when locks is non-nil and an
// in-process guard otherwise.
func NewActionGuard(locks lockStore, ttl time.Duration, logger *zap.Logger) ActionGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	local := NewLocalActionGuard()
	if locks == nil {
		return local
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &distributedGuard{locks: locks, ttl: ttl, fallback: local, logger: logger}
}

// LocalActionGuard is an in-process ActionGuard.
type LocalActionGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewLocalActionGuard constructs an empty in-process guard.
func NewLocalActionGuard() *LocalActionGuard {
	return &LocalActionGuard{inFlight: make(map[string]struct{})}
}

// Acquire takes key or fails with ACTION_IN_PROGRESS.
func (g *LocalActionGuard) Acquire(_ context.Context, key string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inFlight[key]; busy {
		return nil, appErrors.ErrActionInProgress
	}
	g.inFlight[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inFlight, key)
			g.mu.Unlock()
		})
	}, nil
}

type distributedGuard struct {
	locks    lockStore
	ttl      time.Duration
	fallback *LocalActionGuard
	logger   *zap.Logger
}

func (g *distributedGuard) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	ok, err := g.locks.Acquire(ctx, key, token, g.ttl)
	if err != nil {
		g.logger.Warn("action lock unavailable, using local guard", zap.String("key", key), zap.Error(err))
		return g.fallback.Acquire(ctx, key)
	}
	if !ok {
		return nil, appErrors.ErrActionInProgress
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The request context may already be cancelled when the decision completes.
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := g.locks.Release(releaseCtx, key, token); err != nil {
				g.logger.Warn("failed to release action lock", zap.String("key", key), zap.Error(err))
			}
		})
	}, nil
}
