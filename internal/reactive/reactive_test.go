package reactive

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRuntime() *Runtime {
	return NewRuntime(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestValue_SetChangesVersion(t *testing.T) {
	rt := newTestRuntime()
	v := NewValue(rt, "a")

	v.Set("b")
	assert.Equal(t, "b", v.Peek())
	assert.Equal(t, int64(1), v.Version())

	// equal write is not a change
	v.Set("b")
	assert.Equal(t, int64(1), v.Version())
	assert.Equal(t, int64(1), rt.Tick())
}

func TestValue_Update(t *testing.T) {
	rt := newTestRuntime()
	v := NewValue(rt, 2)
	v.Update(func(n int) int { return n * 21 })
	assert.Equal(t, 42, v.Get())
}

func TestComputed_LazyAndMemoized(t *testing.T) {
	rt := newTestRuntime()
	a := NewValue(rt, 2)
	calls := 0
	double := NewComputed(rt, func() int {
		calls++
		return a.Get() * 2
	})

	assert.Equal(t, 0, calls, "computed must not run before first read")
	assert.Equal(t, 4, double.Get())
	assert.Equal(t, 4, double.Get())
	assert.Equal(t, 1, calls)

	a.Set(5)
	assert.Equal(t, 10, double.Get())
	assert.Equal(t, 2, calls)
}

func TestComputed_OnlyChangedBranchRecomputes(t *testing.T) {
	rt := newTestRuntime()
	a := NewValue(rt, 1)
	b := NewValue(rt, 1)
	aCalls, bCalls := 0, 0
	ca := NewComputed(rt, func() int { aCalls++; return a.Get() + 1 })
	cb := NewComputed(rt, func() int { bCalls++; return b.Get() + 1 })
	sum := NewComputed(rt, func() int { return ca.Get() + cb.Get() })

	assert.Equal(t, 4, sum.Get())
	b.Set(10)
	assert.Equal(t, 13, sum.Get())
	assert.Equal(t, 1, aCalls)
	assert.Equal(t, 2, bCalls)
}

func TestComputed_UnchangedResultStopsPropagation(t *testing.T) {
	rt := newTestRuntime()
	a := NewValue(rt, 3)
	parity := NewComputed(rt, func() bool { return a.Get()%2 == 0 })
	calls := 0
	label := NewComputed(rt, func() string {
		calls++
		if parity.Get() {
			return "even"
		}
		return "odd"
	})

	assert.Equal(t, "odd", label.Get())
	a.Set(5)
	assert.Equal(t, "odd", label.Get())
	assert.Equal(t, 1, calls, "parity did not change so label must not re-run")
}

func TestComputed_DynamicDependencies(t *testing.T) {
	rt := newTestRuntime()
	useA := NewValue(rt, true)
	a := NewValue(rt, "a")
	b := NewValue(rt, "b")
	calls := 0
	pick := NewComputed(rt, func() string {
		calls++
		if useA.Get() {
			return a.Get()
		}
		return b.Get()
	})

	assert.Equal(t, "a", pick.Get())
	b.Set("B")
	assert.Equal(t, "a", pick.Get())
	assert.Equal(t, 1, calls, "b is not a dependency yet")

	useA.Set(false)
	assert.Equal(t, "B", pick.Get())
	a.Set("A")
	assert.Equal(t, "B", pick.Get())
	assert.Equal(t, 2, calls)
}

func TestComputed_WritableForwardsToSetter(t *testing.T) {
	rt := newTestRuntime()
	celsius := NewValue(rt, 100.0)
	fahrenheit := NewWritableComputed(rt,
		func() float64 { return celsius.Get()*9/5 + 32 },
		func(f float64) { celsius.Set((f - 32) * 5 / 9) },
	)

	assert.True(t, fahrenheit.Writable())
	assert.Equal(t, 212.0, fahrenheit.Get())
	fahrenheit.Set(32)
	assert.Equal(t, 0.0, celsius.Get())
	assert.Equal(t, 32.0, fahrenheit.Get())
}

func TestComputed_ReadOnlySetPanics(t *testing.T) {
	rt := newTestRuntime()
	c := NewComputed(rt, func() int { return 1 }).Named("one")
	assert.False(t, c.Writable())
	assert.Panics(t, func() { c.Set(2) })
}

func TestComputed_SelfReferencePanicsWithCycleError(t *testing.T) {
	rt := newTestRuntime()
	var c *Computed[int]
	c = NewComputed(rt, func() int { return c.Get() + 1 }).Named("loop")

	defer func() {
		r := recover()
		require.NotNil(t, r)
		cycle, ok := r.(*CycleError)
		require.True(t, ok)
		assert.Contains(t, cycle.Error(), "loop")
	}()
	c.Get()
}

func TestEffect_RerunsOnChange(t *testing.T) {
	rt := newTestRuntime()
	v := NewValue(rt, 1)
	var seen []int
	e := rt.Effect(func() { seen = append(seen, v.Get()) })

	v.Set(2)
	v.Set(3)
	assert.Equal(t, []int{1, 2, 3}, seen)

	e.Dispose()
	v.Set(4)
	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestBatch_NotifiesOnce(t *testing.T) {
	rt := newTestRuntime()
	a := NewValue(rt, 1)
	b := NewValue(rt, 1)
	runs := 0
	rt.Effect(func() {
		runs++
		_ = a.Get() + b.Get()
	})

	rt.Batch(func() {
		a.Set(2)
		b.Set(2)
		rt.Batch(func() { a.Set(3) })
	})
	assert.Equal(t, 2, runs)
}

func TestEffect_WritesSettle(t *testing.T) {
	rt := newTestRuntime()
	src := NewValue(rt, 1)
	mirror := NewValue(rt, 0)
	rt.Effect(func() { mirror.Set(src.Get() * 10) })

	src.Set(4)
	assert.Equal(t, 40, mirror.Peek())
}

func TestUntracked_DoesNotRegister(t *testing.T) {
	rt := newTestRuntime()
	a := NewValue(rt, 1)
	b := NewValue(rt, 1)
	calls := 0
	c := NewComputed(rt, func() int {
		calls++
		return a.Get() + Untracked(rt, b.Get)
	})

	assert.Equal(t, 2, c.Get())
	b.Set(5)
	assert.Equal(t, 2, c.Get())
	assert.Equal(t, 1, calls)
}

func TestDefaultEqual(t *testing.T) {
	assert.True(t, DefaultEqual[any](nil, nil))
	assert.False(t, DefaultEqual[any](nil, 0))
	assert.True(t, DefaultEqual[any]([]string{"a"}, []string{"a"}))
	assert.False(t, DefaultEqual[any](int64(1), 1))
	assert.True(t, DefaultEqual("x", "x"))
}

func TestIdentityEqual(t *testing.T) {
	x, y := new(int), new(int)
	assert.True(t, IdentityEqual([]*int{x, y}, []*int{x, y}))
	assert.False(t, IdentityEqual([]*int{x}, []*int{y}))
	assert.False(t, IdentityEqual([]*int{x}, nil))
}
