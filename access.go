package injector

import (
	"fmt"
	"go/token"
	"reflect"
	"slices"
	"unsafe"

	"github.com/iocgo/injector/proxy"
)

// scope is the struct a handle operates on. A privileged scope reads and
// writes unexported members, a restricted one only exported members.
type scope struct {
	value      reflect.Value
	privileged bool
}

// member is a resolved method. recv is set for registered methods, whose
// fn takes the receiver as first parameter.
type member struct {
	name string
	fn   reflect.Value
	recv reflect.Value
}

func isObject(v reflect.Value) bool {
	return v.Kind() == reflect.Ptr && !v.IsNil() && v.Elem().Kind() == reflect.Struct
}

// bypass returns an addressable, settable copy of the reflect handle that
// points at the same memory. v must be addressable.
func bypass(v reflect.Value) reflect.Value {
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
}

// resolveScope finds the struct named by context: the target itself, or
// breadth first one of its embedded structs. Unknown contexts fall back to
// restricted access on the target.
func resolveScope(object reflect.Value, context string) scope {
	root := object.Elem()
	if root.Type().String() == context {
		return scope{root, true}
	}

	seen := map[reflect.Type]bool{root.Type(): true}
	queue := []reflect.Value{root}
	for len(queue) > 0 {
		value := queue[0]
		queue = queue[1:]
		for i := range value.NumField() {
			if !value.Type().Field(i).Anonymous {
				continue
			}

			embedded := value.Field(i)
			if embedded.Kind() == reflect.Ptr {
				if embedded.IsNil() {
					continue
				}
				embedded = embedded.Elem()
			}

			if embedded.Kind() != reflect.Struct || seen[embedded.Type()] {
				continue
			}
			seen[embedded.Type()] = true

			embedded = bypass(embedded)
			if embedded.Type().String() == context {
				return scope{embedded, true}
			}
			queue = append(queue, embedded)
		}
	}
	return scope{root, false}
}

func (s scope) String() string {
	return s.value.Type().String()
}

func (s scope) field(name string) (reflect.Value, error) {
	sf, ok := s.value.Type().FieldByName(name)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: field %q on %s", ErrNoSuchMember, name, s)
	}

	if !s.privileged && !sf.IsExported() {
		return reflect.Value{}, fmt.Errorf("%w: field %q on %s", ErrNotAccessible, name, s)
	}

	value, err := s.value.FieldByIndexErr(sf.Index)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: field %q on %s: %v", ErrNotAccessible, name, s, err)
	}
	return bypass(value), nil
}

func (s scope) fields() (names []string) {
	for _, sf := range reflect.VisibleFields(s.value.Type()) {
		if sf.Anonymous || (!s.privileged && !sf.IsExported()) {
			continue
		}

		// shadowed or ambiguous names resolve elsewhere
		if resolved, ok := s.value.Type().FieldByName(sf.Name); !ok || !slices.Equal(resolved.Index, sf.Index) {
			continue
		}
		names = append(names, sf.Name)
	}
	return
}

func (s scope) method(name string) (member, error) {
	ptr := s.value.Addr()
	if s.privileged || token.IsExported(name) {
		if fn, ok := proxy.Lookup(ptr.Type(), name); ok {
			recv := ptr
			if !ptr.Type().AssignableTo(fn.Type().In(0)) {
				recv = s.value
			}
			return member{name, fn, recv}, nil
		}
	}

	if fn := ptr.MethodByName(name); fn.IsValid() {
		return member{name: name, fn: fn}, nil
	}

	if _, ok := proxy.Lookup(ptr.Type(), name); ok {
		return member{}, fmt.Errorf("%w: method %q on %s", ErrNotAccessible, name, s)
	}
	return member{}, fmt.Errorf("%w: method %q on %s", ErrNoSuchMember, name, s)
}

// Type is the method's signature without the receiver.
func (m member) Type() reflect.Type {
	if !m.recv.IsValid() {
		return m.fn.Type()
	}
	return withoutReceiver(m.fn.Type())
}

func withoutReceiver(typ reflect.Type) reflect.Type {
	in := make([]reflect.Type, 0, typ.NumIn()-1)
	for i := 1; i < typ.NumIn(); i++ {
		in = append(in, typ.In(i))
	}
	out := make([]reflect.Type, 0, typ.NumOut())
	for i := range typ.NumOut() {
		out = append(out, typ.Out(i))
	}
	return reflect.FuncOf(in, out, typ.IsVariadic() && typ.NumIn() > 1)
}

func (m member) call(receiver reflect.Value, args []any) (out []any, err error) {
	ctx := &proxy.Context{
		Method:   m.name,
		Receiver: receiver,
		In:       args,
	}
	ctx.Do = func() {
		var in []reflect.Value
		if in, err = arguments(m.Type(), ctx.In, m.name); err != nil {
			return
		}

		if m.recv.IsValid() {
			in = append([]reflect.Value{m.recv}, in...)
		}
		ctx.Out = interfaces(m.fn.Call(in))
	}

	proxy.Invoke(ctx)
	return ctx.Out, err
}

// arguments checks args against the parameters of typ. Extra arguments of
// a variadic func are checked against its element type, nil becomes the
// zero value.
func arguments(typ reflect.Type, args []any, name string) ([]reflect.Value, error) {
	n := typ.NumIn()
	if typ.IsVariadic() && len(args) < n-1 || !typ.IsVariadic() && len(args) != n {
		return nil, fmt.Errorf("%w: %s expects %d arguments, got %d", ErrInvalidArgument, name, n, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var param reflect.Type
		if typ.IsVariadic() && i >= n-1 {
			param = typ.In(n - 1).Elem()
		} else {
			param = typ.In(i)
		}

		if arg == nil {
			in[i] = reflect.Zero(param)
			continue
		}

		value := reflect.ValueOf(arg)
		if !value.Type().AssignableTo(param) {
			return nil, fmt.Errorf("%w: %s argument %d: %s is not assignable to %s", ErrInvalidArgument, name, i+1, value.Type(), param)
		}
		in[i] = value
	}
	return in, nil
}

func interfaces(values []reflect.Value) []any {
	out := make([]any, len(values))
	for i, value := range values {
		out[i] = value.Interface()
	}
	return out
}
