package runtime

import (
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCurrentGoroutineID(t *testing.T) {
	main := GetCurrentGoroutineID()
	assert.Positive(t, main)
	assert.Equal(t, main, GetCurrentGoroutineID())

	var other int64
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		other = GetCurrentGoroutineID()
	}()
	wg.Wait()
	assert.NotEqual(t, main, other)
}

func TestThreadLocal(t *testing.T) {
	calls := 0
	local := NewThreadLocal[[]string](func() []string {
		calls++
		return []string{"init"}
	})

	assert.False(t, local.Ex(false))
	assert.True(t, !local.Ex(true))
	assert.True(t, local.Ex(false))
	assert.Equal(t, []string{"init"}, local.Load())
	assert.Equal(t, 1, calls)

	local.Store([]string{"a", "b"})
	assert.Equal(t, []string{"a", "b"}, local.Load())

	done := make(chan []string)
	go func() { done <- local.Load() }()
	assert.Equal(t, []string{"init"}, <-done)

	local.Remove()
	assert.False(t, local.Ex(false))
}

func TestCallerFrame(t *testing.T) {
	frame := CallerFrame(func(f runtime.Frame) bool {
		return strings.HasSuffix(f.Function, "TestCallerFrame")
	})
	require.NotNil(t, frame)
	assert.True(t, strings.HasSuffix(frame.File, "runtime_test.go"))

	assert.Nil(t, CallerFrame(func(runtime.Frame) bool { return false }))
}
