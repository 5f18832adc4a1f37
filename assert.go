package injector

import "fmt"

// Value reads the field name and asserts it to T. No conversion happens, a
// field of another type fails with ErrInvalidArgument.
func Value[T any](vi *ValueInjector, name string) (T, error) {
	value, err := vi.GetValue(name)
	if err != nil {
		var zero T
		return zero, err
	}
	return AssertToError[T](value)
}

// MustValue is Value that panics on error.
func MustValue[T any](vi *ValueInjector, name string) T {
	return Assert[T](vi.GetValue(name))
}

// Result asserts the i-th result of Call or Run to T.
func Result[T any](out []any, i int) (T, error) {
	if i < 0 || i >= len(out) {
		var zero T
		return zero, fmt.Errorf("%w: result %d out of %d", ErrInvalidArgument, i, len(out))
	}
	return AssertToError[T](out[i])
}

// MustResult is Result that panics on error.
func MustResult[T any](out []any, i int) T {
	return Assert[T](Result[T](out, i))
}

func Assert[T any](t any, err error) T {
	if err != nil {
		panic(err)
	}

	obj, err := AssertToError[T](t)
	if err != nil {
		panic(err)
	}
	return obj
}

// AssertToError asserts t to T. A nil t yields the zero T.
func AssertToError[T any](t any) (T, error) {
	if t == nil {
		var zero T
		return zero, nil
	}

	obj, ok := t.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %T is not %s", ErrInvalidArgument, t, tn[T]())
	}
	return obj, nil
}

func tn[T any]() string {
	var t T

	// struct
	name := fmt.Sprintf("%T", t)
	if name != "<nil>" {
		return name
	}

	// interface
	return fmt.Sprintf("%T", new(T))
}
