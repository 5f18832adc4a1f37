package errors

// Context collects the first failing step of a chain of Try calls. A step
// error aborts the chain by panicking, Throw recovers it at the top:
//
//	ctx := errors.New(nil)
//	defer ctx.Throw()
//	obj := errors.Try1(ctx, func() (any, error) { return c.Object("counter") })
type Context struct {
	err   error
	catch func(err error) bool
}

type abort struct{}

func (ctx *Context) Error() error {
	return ctx.err
}

// Throw re-panics anything that is not a step abort. Use Recover to turn the
// abort into a returned error instead.
func (ctx *Context) Throw() {
	r := recover()
	if r == nil {
		return
	}

	if _, ok := r.(abort); ok && ctx.err != nil {
		panic(ctx.err)
	}
	panic(r)
}

// Recover stores the failed step's error into *err.
func (ctx *Context) Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}

	if _, ok := r.(abort); !ok {
		panic(r)
	}
	*err = ctx.err
}

func New(catch func(err error) bool) *Context {
	return &Context{
		err:   nil,
		catch: catch,
	}
}

func panicTo(ctx *Context) {
	if ctx.err == nil {
		return
	}

	if ctx.catch != nil {
		if ctx.catch(ctx.err) {
			ctx.err = nil
			return
		}
	}

	panic(abort{})
}

func Try(ctx *Context, exec func() error) {
	ctx.err = exec()
	panicTo(ctx)
}

func Try1[T any](ctx *Context, exec func() (T, error)) (t T) {
	t, ctx.err = exec()
	panicTo(ctx)
	return
}

func Try2[T, M any](ctx *Context, exec func() (T, M, error)) (t T, m M) {
	t, m, ctx.err = exec()
	panicTo(ctx)
	return
}
