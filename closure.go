package injector

import (
	"fmt"
	"reflect"
)

var injectorType = reflect.TypeFor[*ValueInjector]()

// Closure is a func whose first parameter acts as its receiver. Binding it
// to an injector fills that parameter: a *ValueInjector parameter gets an
// injector on the target with the same access context, any other parameter
// the target is assignable to gets the target itself.
//
//	c, _ := injector.NewClosure(func(this *injector.ValueInjector, n int) int {
//		v, _ := injector.Value[int](this, "count")
//		return v + n
//	})
//	vi.Bind(c)
//	out, _ := c.Call(2)
type Closure struct {
	fn   reflect.Value
	this reflect.Value
}

func NewClosure(fn any) (*Closure, error) {
	value := reflect.ValueOf(fn)
	if value.Kind() != reflect.Func || value.IsNil() {
		return nil, fmt.Errorf("%w: closure must be a func, got %T", ErrInvalidArgument, fn)
	}

	if value.Type().NumIn() == 0 {
		return nil, fmt.Errorf("%w: closure %s has no receiver parameter", ErrInvalidArgument, value.Type())
	}
	return &Closure{fn: value}, nil
}

// Bound returns the receiver the closure is bound to, nil when unbound.
func (c *Closure) Bound() any {
	if !c.this.IsValid() {
		return nil
	}
	return c.this.Interface()
}

// Call invokes the closure. An unbound closure receives the zero value of
// its receiver parameter.
func (c *Closure) Call(args ...any) ([]any, error) {
	typ := c.fn.Type()
	this := c.this
	if !this.IsValid() {
		this = reflect.Zero(typ.In(0))
	}

	in, err := arguments(withoutReceiver(typ), args, "closure")
	if err != nil {
		return nil, err
	}
	return interfaces(c.fn.Call(append([]reflect.Value{this}, in...))), nil
}

func (c *Closure) receiver(object reflect.Value, context string) (reflect.Value, error) {
	param := c.fn.Type().In(0)
	switch {
	case param == injectorType:
		this := &ValueInjector{}
		this.bind(object, context)
		return reflect.ValueOf(this), nil
	case object.Type().AssignableTo(param):
		return object, nil
	}
	return reflect.Value{}, fmt.Errorf("%w: receiver %s does not accept %s", ErrRebind, param, object.Type())
}

// Bind rebinds c in place to the target and access context. It reports
// false, leaving c untouched, when c is nil, the injector is unbound or
// the receiver parameter cannot take the target.
func (vi *ValueInjector) Bind(c *Closure) bool {
	if c == nil || !c.fn.IsValid() || vi.object == nil {
		return false
	}

	this, err := c.receiver(reflect.ValueOf(vi.object), vi.context)
	if err != nil {
		return false
	}
	c.this = this
	return true
}

// Run binds a copy of fn, a *Closure or a func accepted by NewClosure, and
// invokes it with args. Binding and invocation errors are returned, panics
// are not recovered.
func (vi *ValueInjector) Run(fn any, args ...any) ([]any, error) {
	var c Closure
	switch f := fn.(type) {
	case *Closure:
		if f == nil || !f.fn.IsValid() {
			return nil, fmt.Errorf("%w: nil closure", ErrInvalidArgument)
		}
		c = *f
	default:
		nc, err := NewClosure(fn)
		if err != nil {
			return nil, err
		}
		c = *nc
	}

	if vi.object == nil {
		return nil, fmt.Errorf("%w: %w", ErrRebind, ErrUnbound)
	}

	this, err := c.receiver(reflect.ValueOf(vi.object), vi.context)
	if err != nil {
		return nil, err
	}
	c.this = this
	return c.Call(args...)
}
