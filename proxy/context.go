package proxy

import "reflect"

// Context is one forwarded call. Do performs it and fills Out.
type Context struct {
	In,
	Out []any
	Method   string
	Receiver reflect.Value
	Do       func()
}
