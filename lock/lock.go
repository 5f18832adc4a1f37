package lock

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	run "github.com/iocgo/injector/runtime"
)

// DefaultTimeout bounds Lock when it is given a nil context.
const DefaultTimeout = 10 * time.Second

// ExpireLock is a mutex whose acquisition gives up when a context ends.
// A reentrant lock may be taken again by the goroutine holding it.
type ExpireLock struct {
	// waiting + holding callers
	count int64

	// -1 not reentrant, 0 reentrant and free, > 0 id of the holding goroutine
	gid,
	reentrantCount int64

	mutex sync.Mutex
}

func NewExpireLock(reentrant bool) *ExpireLock {
	var gid int64 = -1
	if reentrant {
		gid = 0
	}

	return &ExpireLock{
		gid:   gid,
		count: 0,
	}
}

// Lock spins until the lock is taken or ctx is done.
func (e *ExpireLock) Lock(ctx context.Context) bool {
	if ctx == nil {
		timeout, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
		defer cancel()
		ctx = timeout
	}

	atomic.AddInt64(&e.count, 1)
	for {
		select {
		case <-ctx.Done():
			atomic.AddInt64(&e.count, -1)
			return false
		default:
			if e.tryLock() {
				return true
			}
			runtime.Gosched()
		}
	}
}

func (e *ExpireLock) Unlock() {
	atomic.AddInt64(&e.count, -1)
	e.unlock()
}

func (e *ExpireLock) tryLock() (ok bool) {
	if atomic.LoadInt64(&e.gid) < 0 {
		return e.mutex.TryLock()
	}

	gid := run.GetCurrentGoroutineID()
	if atomic.LoadInt64(&e.gid) == gid {
		// only the holder can observe its own id
		e.reentrantCount++
		return true
	}

	if ok = e.mutex.TryLock(); ok {
		atomic.StoreInt64(&e.gid, gid)
		e.reentrantCount = 1
	}
	return
}

func (e *ExpireLock) unlock() {
	if atomic.LoadInt64(&e.gid) >= 0 {
		e.reentrantCount--
		if e.reentrantCount <= 0 {
			e.reentrantCount = 0
			atomic.StoreInt64(&e.gid, 0)
			e.mutex.Unlock()
		}
		return
	}

	e.mutex.Unlock()
}

// IsIdle reports that nobody holds or waits for the lock.
func (e *ExpireLock) IsIdle() bool {
	return atomic.LoadInt64(&e.count) < 1
}
