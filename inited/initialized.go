// Package inited runs process-wide start and exit hooks. Exit hooks run in
// reverse registration order when the process receives SIGINT or SIGTERM.
package inited

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	mu    sync.Mutex
	inits = make([]func(args ...interface{}), 0)
	exits = make([]func(args ...interface{}), 0)
)

func AddInitialized(apply func(args ...interface{})) {
	mu.Lock()
	defer mu.Unlock()
	inits = append(inits, apply)
}

func AddExited(apply func(args ...interface{})) {
	mu.Lock()
	defer mu.Unlock()
	exits = append(exits, apply)
}

// Initialized runs the start hooks, then waits for a signal or ctx and
// runs the exit hooks. With block unset the wait happens in a goroutine
// and the returned channel closes once the exit hooks are done.
func Initialized(ctx context.Context, block bool, args ...interface{}) <-chan struct{} {
	mu.Lock()
	starts := append([]func(args ...interface{}){}, inits...)
	mu.Unlock()
	for _, apply := range starts {
		apply(args...)
	}

	done := make(chan struct{})
	wait := func() {
		defer close(done)
		notify, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-notify.Done()
		Exit(args...)
	}

	if block {
		wait()
		return done
	}

	go wait()
	return done
}

// Exit runs the exit hooks once, latest first.
func Exit(args ...interface{}) {
	mu.Lock()
	stops := exits
	exits = make([]func(args ...interface{}), 0)
	mu.Unlock()

	for i := len(stops) - 1; i >= 0; i-- {
		stops[i](args...)
	}
}
