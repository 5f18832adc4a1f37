package injector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type other struct{ n int }

func TestRun(t *testing.T) {
	obj := &testClass{special: 40}
	vi := New(obj)

	out, err := vi.Run(func(this *ValueInjector, n int) int {
		return MustValue[int](this, "special") + n
	}, 2)
	require.NoError(t, err)
	assert.Equal(t, []any{42}, out)

	out, err = vi.Run(func(this *testClass) []any { return this.getValues() })
	require.NoError(t, err)
	assert.Equal(t, []any{[]any{"", "", 40}}, out[:1])
}

func TestRunDoesNotMutateClosure(t *testing.T) {
	c, err := NewClosure(func(this *testClass) *testClass { return this })
	require.NoError(t, err)

	obj := &testClass{}
	out, err := New(obj).Run(c)
	require.NoError(t, err)
	assert.Same(t, obj, out[0])

	assert.Nil(t, c.Bound())
	out, err = c.Call()
	require.NoError(t, err)
	assert.Nil(t, out[0])
}

func TestRunPropagatesErrors(t *testing.T) {
	vi := New(&testClass{})

	_, err := vi.Run(func(this *other) {})
	assert.ErrorIs(t, err, ErrRebind)

	_, err = vi.Run("not a func")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = vi.Run(func() {})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = vi.Run(func(this *testClass, s string) {}, 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New(nil).Run(func(this *testClass) {})
	assert.ErrorIs(t, err, ErrRebind)
	assert.ErrorIs(t, err, ErrUnbound)

	assert.PanicsWithValue(t, "boom", func() {
		_, _ = vi.Run(func(this *testClass) { panic("boom") })
	})
}

func TestBind(t *testing.T) {
	obj := &testClass{special: 1}
	vi := New(obj)

	c, err := NewClosure(func(this *ValueInjector, v int) (int, error) {
		if _, err := this.SetValue("special", v); err != nil {
			return 0, err
		}
		return Value[int](this, "special")
	})
	require.NoError(t, err)

	assert.True(t, vi.Bind(c))
	assert.IsType(t, &ValueInjector{}, c.Bound())

	out, err := c.Call(5)
	require.NoError(t, err)
	assert.Equal(t, []any{5, nil}, out)
	assert.Equal(t, 5, obj.special)

	direct, err := NewClosure(func(this *testClass) int { return this.special })
	require.NoError(t, err)
	assert.True(t, vi.Bind(direct))
	assert.Same(t, obj, direct.Bound())
	assert.Equal(t, []any{5}, must(direct.Call()))
}

func TestBindFailure(t *testing.T) {
	first := &testClass{special: 1}
	c, err := NewClosure(func(this *testClass) int { return this.special })
	require.NoError(t, err)
	require.True(t, New(first).Bind(c))

	assert.False(t, New(&other{}).Bind(c))
	assert.Same(t, first, c.Bound())
	assert.Equal(t, []any{1}, must(c.Call()))

	assert.False(t, New(nil).Bind(c))
	assert.False(t, New(first).Bind(nil))
	assert.False(t, New(first).Bind(&Closure{}))
}

func TestBindKeepsContext(t *testing.T) {
	obj := &derived{base: base{secret: "base"}, secret: "derived"}
	vi := New(obj)
	require.NoError(t, vi.SetObject(obj, "injector.base"))

	out, err := vi.Run(func(this *ValueInjector) (any, error) {
		return this.GetValue("secret")
	})
	require.NoError(t, err)
	assert.Equal(t, "base", out[0])

	out, err = vi.Run(func(this *ValueInjector) string { return this.GetObjectContext() })
	require.NoError(t, err)
	assert.Equal(t, "injector.base", out[0])
}

func must(out []any, err error) []any {
	if err != nil {
		panic(err)
	}
	return out
}
