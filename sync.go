package injector

import (
	"context"
	"fmt"

	"github.com/iocgo/injector/lock"
)

// SyncInjector serializes access to a ValueInjector. The lock is reentrant,
// a closure started by Run may call back into the same SyncInjector.
type SyncInjector struct {
	vi *ValueInjector
	mu *lock.ExpireLock
}

func Synchronized(vi *ValueInjector) *SyncInjector {
	return &SyncInjector{vi, lock.NewExpireLock(true)}
}

func (s *SyncInjector) acquire(ctx context.Context) error {
	if s.mu.Lock(ctx) {
		return nil
	}

	if ctx != nil && ctx.Err() != nil {
		return fmt.Errorf("%w: %w", ErrLockTimeout, ctx.Err())
	}
	return ErrLockTimeout
}

// Unwrap returns the guarded injector. Using it directly bypasses the lock.
func (s *SyncInjector) Unwrap() *ValueInjector {
	return s.vi
}

func (s *SyncInjector) SetObject(ctx context.Context, object any, objectContext ...string) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()
	return s.vi.SetObject(object, objectContext...)
}

func (s *SyncInjector) GetObject(ctx context.Context) (any, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	return s.vi.GetObject(), nil
}

func (s *SyncInjector) GetValue(ctx context.Context, name string) (any, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	return s.vi.GetValue(name)
}

func (s *SyncInjector) SetValue(ctx context.Context, name string, value any) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()
	_, err := s.vi.SetValue(name, value)
	return err
}

func (s *SyncInjector) Call(ctx context.Context, name string, args ...any) ([]any, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	return s.vi.Call(name, args...)
}

func (s *SyncInjector) Run(ctx context.Context, fn any, args ...any) ([]any, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	return s.vi.Run(fn, args...)
}

// Bind reports false as well when the lock cannot be taken.
func (s *SyncInjector) Bind(ctx context.Context, c *Closure) bool {
	if err := s.acquire(ctx); err != nil {
		return false
	}
	defer s.mu.Unlock()
	return s.vi.Bind(c)
}
