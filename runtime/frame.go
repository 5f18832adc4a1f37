package runtime

import (
	"runtime"
)

// CallerFrame walks the stack above its caller and returns the first frame
// matched accepts, or nil.
func CallerFrame(matched func(frame runtime.Frame) bool) *runtime.Frame {
	pcs := make([]uintptr, 16)
	depth := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:depth])
	for {
		f, more := frames.Next()
		if matched(f) {
			return &f
		}
		if !more {
			return nil
		}
	}
}
