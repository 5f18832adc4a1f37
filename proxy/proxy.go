// Package proxy holds the methods a type opts in to expose to the injector.
//
// Reflection cannot reach unexported methods, so the owning package
// registers them as method expressions:
//
//	func init() {
//		proxy.Reg[*Counter]("reset", (*Counter).reset)
//	}
package proxy

import (
	"fmt"
	"reflect"
	"sync"
)

var (
	mu          sync.RWMutex
	methodMap   = make(map[string]map[string]reflect.Value)
	interceptor []func(*Context)
)

// Reg registers fn as method name of T. The first parameter of fn is the
// receiver and must accept a T. Registering a name twice overrides.
func Reg[T any](name string, fn any) {
	typ := reflect.TypeFor[T]()
	exec := reflect.ValueOf(fn)
	if exec.Kind() != reflect.Func {
		panic(fmt.Sprintf("proxy: %s.%s is not a func: %T", typ, name, fn))
	}

	if exec.Type().NumIn() == 0 || !typ.AssignableTo(exec.Type().In(0)) {
		panic(fmt.Sprintf("proxy: %s.%s: first parameter must accept %s", typ, name, typ))
	}

	mu.Lock()
	defer mu.Unlock()
	n := generateServiceName(typ)
	if _, ok := methodMap[n]; !ok {
		methodMap[n] = make(map[string]reflect.Value)
	}
	methodMap[n][name] = exec
}

// Lookup finds a registration for t. A method registered on *T is found
// from T and the other way around, the caller supplies the matching receiver.
func Lookup(t reflect.Type, name string) (reflect.Value, bool) {
	mu.RLock()
	defer mu.RUnlock()

	candidates := []reflect.Type{t}
	if t.Kind() == reflect.Ptr {
		candidates = append(candidates, t.Elem())
	} else {
		candidates = append(candidates, reflect.PointerTo(t))
	}

	for _, c := range candidates {
		if exec, ok := methodMap[generateServiceName(c)][name]; ok {
			return exec, true
		}
	}
	return reflect.Value{}, false
}

// Names lists the methods registered for t, pointer and value receivers alike.
func Names(t reflect.Type) (names []string) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	mu.RLock()
	defer mu.RUnlock()
	for _, c := range []reflect.Type{t, reflect.PointerTo(t)} {
		for name := range methodMap[generateServiceName(c)] {
			names = append(names, name)
		}
	}
	return
}

// Intercept adds a hook run around every forwarded call. The hook decides
// whether to invoke ctx.Do; hooks run in registration order, each wrapping
// the next.
func Intercept(hook func(ctx *Context)) {
	mu.Lock()
	defer mu.Unlock()
	interceptor = append(interceptor, hook)
}

// Reset drops all registrations and hooks.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	methodMap = make(map[string]map[string]reflect.Value)
	interceptor = nil
}

// Invoke runs ctx through the interceptors and finally ctx.Do.
func Invoke(ctx *Context) {
	mu.RLock()
	hooks := append([]func(*Context){}, interceptor...)
	mu.RUnlock()

	do := ctx.Do
	for i := len(hooks) - 1; i >= 0; i-- {
		next, hook := do, hooks[i]
		do = func() {
			ctx.Do = next
			hook(ctx)
		}
	}
	do()
	ctx.Do = nil
}

func generateServiceName(t reflect.Type) string {
	prefix := ""
	for t.Kind() == reflect.Ptr {
		prefix += "*"
		t = t.Elem()
	}
	return prefix + t.PkgPath() + "#" + t.String()
}
