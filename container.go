package injector

import (
	"fmt"
	run "runtime"
	"slices"
	"strings"
	"sync"

	"github.com/iocgo/injector/errors"
	"github.com/iocgo/injector/runtime"
	"github.com/samber/do/v2"
)

type keys struct {
	sync.Mutex
	g []string
}

// Container is a registry of named target objects for tools that inspect
// objects by name, such as the debug inspector. Providers run lazily on
// first lookup and their result is kept.
type Container struct {
	inject *do.RootScope
	alias  map[string]string
}

var (
	threadLocal = runtime.NewThreadLocal[*keys](func() *keys {
		return &keys{}
	})
)

func (k *keys) push(key string) (re bool) {
	k.Lock()
	defer k.Unlock()

	if !slices.Contains(k.g, key) {
		re = true
	}

	k.g = append(k.g, key)
	return
}

func (k *keys) pop() {
	k.Lock()
	defer k.Unlock()
	if len(k.g) > 0 {
		k.g = k.g[:len(k.g)-1]
	}
}

func NewContainer() *Container {
	return &Container{
		inject: do.New(),
		alias:  make(map[string]string),
	}
}

// ProvideObject registers a provider for the object name. The provider may
// look up other objects of the same container.
func ProvideObject[T any](container *Container, name string, provider func() (T, error)) {
	do.ProvideNamed[any](container.inject, name, func(do.Injector) (any, error) {
		return provider()
	})
}

// OverrideObject replaces the provider of name.
func OverrideObject[T any](container *Container, name string, provider func() (T, error)) {
	do.OverrideNamed[any](container.inject, name, func(do.Injector) (any, error) {
		return provider()
	})
}

// InvokeObject looks up name and asserts the object to T.
func InvokeObject[T any](container *Container, name string) (t T, err error) {
	obj, err := container.Object(name)
	if err != nil {
		return
	}
	return AssertToError[T](obj)
}

// Alias makes name resolve to fullName. Aliases may chain, but not loop.
func (c *Container) Alias(name, fullName string) {
	if n, ok := c.alias[name]; ok {
		panic("alias '" + name + "' already points to '" + n + "'")
	}

	if n, err := c.resolve(fullName); err == nil && n == name && fullName != name {
		panic("alias '" + name + "' -> '" + fullName + "' is circular")
	}
	c.alias[name] = fullName
}

func (c *Container) resolve(name string) (string, error) {
	var chain []string
	for {
		n, ok := c.alias[name]
		if !ok || n == name {
			return name, nil
		}

		if slices.Contains(chain, name) {
			return "", fmt.Errorf("%w: circular alias:\n%s", ErrInvalidArgument, join(append(chain, name), name))
		}
		chain = append(chain, name)
		name = n
	}
}

// Object returns the object registered as name, building it on first use.
func (c *Container) Object(name string) (obj any, err error) {
	name, err = c.resolve(name)
	if err != nil {
		return nil, warpError(err)
	}

	if !threadLocal.Ex(true) {
		defer threadLocal.Remove()
	}

	value := threadLocal.Load()
	if !value.push(name) {
		defer value.pop()
		return nil, warpError(fmt.Errorf("%w: circular dependency occurs:\n%s", ErrInvalidArgument, join(value.g, name)))
	}
	defer value.pop()

	obj, err = do.InvokeNamed[any](c.inject, name)
	if err != nil {
		return nil, warpError(fmt.Errorf("%w: object %q: %v", ErrNoSuchMember, name, err))
	}
	return
}

// Injector returns a ValueInjector bound to the object name.
func (c *Container) Injector(name string, context ...string) (*ValueInjector, error) {
	obj, err := c.Object(name)
	if err != nil {
		return nil, err
	}

	vi := &ValueInjector{}
	if err = vi.SetObject(obj, context...); err != nil {
		return nil, fmt.Errorf("object %q: %w", name, err)
	}
	return vi, nil
}

// Names lists the registered object names, aliases excluded.
func (c *Container) Names() (names []string) {
	for _, ser := range c.inject.ListProvidedServices() {
		names = append(names, ser.Service)
	}
	slices.Sort(names)
	return
}

func (c *Container) Describe() string {
	injector := do.ExplainInjector(c.inject)
	return injector.String()
}

func (c *Container) Shutdown() error {
	if errs := c.inject.Shutdown(); errs != nil {
		return errs
	}
	return nil
}

// warpError appends the location of the first caller outside this file.
func warpError(err error) error {
	if err == nil {
		return nil
	}

	frame := runtime.CallerFrame(func(fe run.Frame) bool {
		return !strings.HasSuffix(fe.File, "/container.go") &&
			!strings.HasPrefix(fe.Function, "github.com/samber/do")
	})

	if frame != nil {
		err = errors.Join(err, fmt.Errorf(`in %s # %s:%d`, frame.Function, frame.File, frame.Line))
	}
	return err
}

func join(slice []string, n string) (str string) {
	idx := -1
	sliceL := len(slice)
	for i, it := range slice {
		if idx == -1 && it == n {
			idx = i
		}

		switch i {
		case idx:
			str += "╭- " + it + "\n"
		case sliceL - 1:
			str += "╰> " + it + "\n"
		default:
			if idx == -1 {
				str += "   " + it + "\n"
			} else {
				str += "|  " + it + "\n"
			}
		}
	}
	return
}
