package runtime

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

var (
	littleBuf = sync.Pool{
		New: func() any { bytes := make([]byte, 64); return &bytes },
	}

	goroutinePrefix = []byte("goroutine ")
)

// GetCurrentGoroutineID parses the id out of the first line of the stack
// trace, "goroutine 18 [running]:".
func GetCurrentGoroutineID() int64 {
	bp := littleBuf.Get().(*[]byte)
	defer littleBuf.Put(bp)

	b := *bp
	b = bytes.TrimPrefix(b[:runtime.Stack(b, false)], goroutinePrefix)
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}

	id, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		panic("runtime: cannot parse goroutine id: " + err.Error())
	}
	return id
}
