package reactive

import "fmt"

// CycleError is the panic value raised when a computation reads itself.
type CycleError struct {
	Name string
}

func (e *CycleError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("reactive: computation %q depends on itself", e.Name)
	}
	return "reactive: computation depends on itself"
}

// Computed is a memoized derivation with automatic dependency tracking.
type Computed[T any] struct {
	rt        *Runtime
	name      string
	fn        func() T
	setter    func(T)
	equal     EqualFunc[T]
	value     T
	ver       int64
	deps      []dep
	checkedAt int64
	ready     bool
	computing bool
}

// NewComputed creates a lazy derivation of fn. Nothing runs until the first
// read.
func NewComputed[T any](rt *Runtime, fn func() T) *Computed[T] {
	return &Computed[T]{rt: rt, fn: fn, equal: DefaultEqual[T]}
}

// NewWritableComputed creates a derivation whose Set is forwarded to setter.
func NewWritableComputed[T any](rt *Runtime, fn func() T, setter func(T)) *Computed[T] {
	c := NewComputed(rt, fn)
	c.setter = setter
	return c
}

// Named labels the computation for cycle diagnostics.
func (c *Computed[T]) Named(name string) *Computed[T] {
	c.name = name
	return c
}

// WithEqual replaces the equality used to decide whether a re-evaluation
// produced a new value.
func (c *Computed[T]) WithEqual(eq EqualFunc[T]) *Computed[T] {
	c.equal = eq
	return c
}

// Get returns the up to date result and registers it as a dependency.
func (c *Computed[T]) Get() T {
	c.refresh()
	c.rt.track(c)
	return c.value
}

// Peek returns the up to date result without registering a dependency.
func (c *Computed[T]) Peek() T {
	c.refresh()
	return c.value
}

// Writable reports whether Set is supported.
func (c *Computed[T]) Writable() bool {
	return c.setter != nil
}

// Set forwards x to the setter. Calling Set on a read-only computation is a
// programming error and panics.
func (c *Computed[T]) Set(x T) {
	if c.setter == nil {
		panic(fmt.Sprintf("reactive: computation %q is read-only", c.name))
	}
	c.setter(x)
}

// Version returns how many distinct results the computation produced. Reading
// it brings the computation up to date and registers a dependency.
func (c *Computed[T]) Version() int64 {
	c.refresh()
	c.rt.track(c)
	return c.ver
}

func (c *Computed[T]) version() int64 { return c.ver }

func (c *Computed[T]) refresh() {
	if c.computing {
		panic(&CycleError{Name: c.name})
	}
	now := c.rt.clock.Current()
	if c.ready && c.checkedAt == now {
		return
	}
	if c.ready {
		c.computing = true
		changed := stale(c.deps)
		c.computing = false
		if !changed {
			c.checkedAt = c.rt.clock.Current()
			return
		}
	}
	c.recompute()
}

func (c *Computed[T]) recompute() {
	var next T
	c.computing = true
	defer func() {
		c.computing = false
	}()
	c.deps = c.rt.run(func() {
		next = c.fn()
	})
	c.checkedAt = c.rt.clock.Current()
	if !c.ready || !c.equal(c.value, next) {
		c.value = next
		c.ver++
	}
	c.ready = true
}
