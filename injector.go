// Package injector reads, writes and invokes members of a struct regardless
// of whether they are exported.
//
//	vi := injector.New(&svc)
//	vi.SetValue("retries", 3)
//	n, err := injector.Value[int](vi, "retries")
//	out, err := vi.Call("flush", ctx)
//
// Fields are reached through reflection and unsafe. Unexported methods are
// invisible to reflection, the owning package registers them with proxy.Reg.
//
// A ValueInjector is not safe for concurrent use, see Synchronized.
package injector

import (
	"fmt"
	"reflect"
)

type (
	getterFunc func(name string) (any, error)
	setterFunc func(name string, value any) error
	callerFunc func(name string, args []any) ([]any, error)
)

// ValueInjector operates on a target struct pointer under an access
// context, the name of the struct type whose unexported members may be
// touched. By default that is the target's own type, naming an embedded
// struct narrows access to it, any other name leaves only exported members.
type ValueInjector struct {
	object  any
	context string

	// created on first use, dropped by SetObject. Not guarded: two racing
	// first uses both build a handle and the last one is kept.
	getter getterFunc
	setter setterFunc
	caller callerFunc
}

// New returns an injector bound to object, or an unbound one when object
// is not a struct pointer.
func New(object any) *ValueInjector {
	vi := &ValueInjector{}
	if isObject(reflect.ValueOf(object)) {
		vi.bind(reflect.ValueOf(object), "")
	}
	return vi
}

// SetObject binds the injector to object. The optional context selects the
// access scope and defaults to the object's type name. On error the
// injector is left as it was.
func (vi *ValueInjector) SetObject(object any, context ...string) error {
	value := reflect.ValueOf(object)
	if !isObject(value) {
		return fmt.Errorf("%w: SetObject expects a non-nil struct pointer, got %T", ErrInvalidArgument, object)
	}

	var ctx string
	for _, c := range context {
		if c != "" {
			ctx = c
			break
		}
	}

	vi.bind(value, ctx)
	return nil
}

func (vi *ValueInjector) bind(object reflect.Value, context string) {
	if context == "" {
		context = object.Elem().Type().String()
	}

	vi.object = object.Interface()
	vi.context = context
	vi.getter, vi.setter, vi.caller = nil, nil, nil
}

func (vi *ValueInjector) GetObject() any {
	return vi.object
}

func (vi *ValueInjector) GetObjectContext() string {
	return vi.context
}

func (vi *ValueInjector) scope() (scope, error) {
	if vi.object == nil {
		return scope{}, ErrUnbound
	}
	return resolveScope(reflect.ValueOf(vi.object), vi.context), nil
}

// handle captures the target and context, not the resolved scope, so an
// embedded pointer reassigned after the handle was built is followed.
func (vi *ValueInjector) handle() (func() scope, error) {
	if vi.object == nil {
		return nil, ErrUnbound
	}

	object, context := reflect.ValueOf(vi.object), vi.context
	return func() scope {
		return resolveScope(object, context)
	}, nil
}

func (vi *ValueInjector) getGetter() (getterFunc, error) {
	if vi.getter == nil {
		resolve, err := vi.handle()
		if err != nil {
			return nil, err
		}

		vi.getter = func(name string) (any, error) {
			field, err := resolve().field(name)
			if err != nil {
				return nil, err
			}
			return field.Interface(), nil
		}
	}
	return vi.getter, nil
}

func (vi *ValueInjector) getSetter() (setterFunc, error) {
	if vi.setter == nil {
		resolve, err := vi.handle()
		if err != nil {
			return nil, err
		}

		vi.setter = func(name string, value any) error {
			s := resolve()
			field, err := s.field(name)
			if err != nil {
				return err
			}

			if value == nil {
				field.SetZero()
				return nil
			}

			v := reflect.ValueOf(value)
			if !v.Type().AssignableTo(field.Type()) {
				return fmt.Errorf("%w: %s is not assignable to field %q (%s) on %s", ErrInvalidArgument, v.Type(), name, field.Type(), s)
			}
			field.Set(v)
			return nil
		}
	}
	return vi.setter, nil
}

func (vi *ValueInjector) getCaller() (callerFunc, error) {
	if vi.caller == nil {
		resolve, err := vi.handle()
		if err != nil {
			return nil, err
		}

		vi.caller = func(name string, args []any) ([]any, error) {
			s := resolve()
			m, err := s.method(name)
			if err != nil {
				return nil, err
			}
			return m.call(s.value.Addr(), args)
		}
	}
	return vi.caller, nil
}

// GetValue reads the field name of the target.
func (vi *ValueInjector) GetValue(name string) (any, error) {
	getter, err := vi.getGetter()
	if err != nil {
		return nil, err
	}
	return getter(name)
}

// SetValue writes value into the field name of the target. The value must
// be assignable to the field, nil stores the zero value.
func (vi *ValueInjector) SetValue(name string, value any) (*ValueInjector, error) {
	setter, err := vi.getSetter()
	if err != nil {
		return vi, err
	}
	return vi, setter(name, value)
}

// Call invokes the method name of the target with args and returns all of
// its results. Registered methods (see proxy.Reg) are tried before
// exported ones. A panic in the method is not recovered.
func (vi *ValueInjector) Call(name string, args ...any) ([]any, error) {
	caller, err := vi.getCaller()
	if err != nil {
		return nil, err
	}
	return caller(name, args)
}

// FieldType returns the type of the field name.
func (vi *ValueInjector) FieldType(name string) (reflect.Type, error) {
	s, err := vi.scope()
	if err != nil {
		return nil, err
	}

	field, err := s.field(name)
	if err != nil {
		return nil, err
	}
	return field.Type(), nil
}

// MethodType returns the signature of the method name, without receiver.
func (vi *ValueInjector) MethodType(name string) (reflect.Type, error) {
	s, err := vi.scope()
	if err != nil {
		return nil, err
	}

	m, err := s.method(name)
	if err != nil {
		return nil, err
	}
	return m.Type(), nil
}

// Fields lists the fields reachable in the current scope, promoted ones
// included, in declaration order.
func (vi *ValueInjector) Fields() ([]string, error) {
	s, err := vi.scope()
	if err != nil {
		return nil, err
	}
	return s.fields(), nil
}
