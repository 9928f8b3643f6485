package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrNotObtained is returned when the lock is held elsewhere for longer than the wait.
var ErrNotObtained = errors.New("lock not obtained")

// ReleaseFunc releases an obtained lock.
type ReleaseFunc func(ctx context.Context) error

// Locker obtains named locks.
type Locker interface {
	Obtain(ctx context.Context, key string) (ReleaseFunc, error)
}

// DefaultWait is how long NewLocal waits for a held lock.
const DefaultWait = 10 * time.Second

// New returns a Redis locker when an address is configured, otherwise a local
// one. Both give up on a held lock after cfg.WaitSeconds.
func New(cfg Config) (Locker, error) {
	if cfg.Addr == "" {
		return NewLocalWait(time.Duration(cfg.WaitSeconds) * time.Second), nil
	}
	return NewRedis(cfg)
}

// Local is an in-process Locker.
type Local struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
	wait  time.Duration
}

// NewLocal creates an in-process locker that waits DefaultWait.
func NewLocal() *Local {
	return NewLocalWait(DefaultWait)
}

// NewLocalWait creates an in-process locker that waits up to wait for a held
// lock. A wait of zero fails immediately.
func NewLocalWait(wait time.Duration) *Local {
	return &Local{locks: make(map[string]chan struct{}), wait: wait}
}

// Obtain blocks until key is free, the wait elapses or ctx is done.
func (l *Local) Obtain(ctx context.Context, key string) (ReleaseFunc, error) {
	l.mu.Lock()
	ch, ok := l.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[key] = ch
	}
	l.mu.Unlock()

	if l.wait <= 0 {
		select {
		case ch <- struct{}{}:
		default:
			return nil, fmt.Errorf("%w: %s", ErrNotObtained, key)
		}
	} else {
		waitCtx, cancel := context.WithTimeout(ctx, l.wait)
		defer cancel()
		select {
		case ch <- struct{}{}:
		case <-waitCtx.Done():
			return nil, fmt.Errorf("%w: %s: %v", ErrNotObtained, key, waitCtx.Err())
		}
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() { <-ch })
		return nil
	}, nil
}

// Redis is a Locker shared by every process using the same Redis.
type Redis struct {
	client *redis.Client
	locker *redislock.Client
	ttl    time.Duration
	wait   time.Duration
}

// NewRedis creates a Redis locker. The connection is established lazily.
func NewRedis(cfg Config) (*Redis, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is empty")
	}
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	wait := time.Duration(cfg.WaitSeconds) * time.Second
	if wait < 0 {
		wait = 0
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Redis{
		client: client,
		locker: redislock.New(client),
		ttl:    ttl,
		wait:   wait,
	}, nil
}

// Obtain acquires key, retrying every 100ms until the configured wait elapses.
func (r *Redis) Obtain(ctx context.Context, key string) (ReleaseFunc, error) {
	retries := int(r.wait / (100 * time.Millisecond))
	opts := &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), retries),
	}

	l, err := r.locker.Obtain(ctx, key, r.ttl, opts)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, fmt.Errorf("%w: %s", ErrNotObtained, key)
		}
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}

	// Keep the lock alive while a long apply runs
	stop := make(chan struct{})
	done := keepAlive(l, r.ttl, r.ttl/2, stop)

	var once sync.Once
	var releaseErr error
	return func(ctx context.Context) error {
		once.Do(func() {
			close(stop)
			<-done
			if err := l.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				releaseErr = fmt.Errorf("failed to release lock %s: %w", key, err)
			}
		})
		return releaseErr
	}, nil
}

// refresher is the part of *redislock.Lock used by keepAlive.
type refresher interface {
	Refresh(ctx context.Context, ttl time.Duration, opt *redislock.Options) error
}

// keepAlive extends the lock to ttl every interval until stop is closed or a
// refresh fails. The returned channel is closed when it exits.
func keepAlive(l refresher, ttl, every time.Duration, stop <-chan struct{}) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), every)
				err := l.Refresh(ctx, ttl, nil)
				cancel()
				if err != nil {
					return
				}
			}
		}
	}()
	return done
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
