package reactive

import "reflect"

// EqualFunc reports whether two values are the same for change detection.
type EqualFunc[T any] func(a, b T) bool

// DefaultEqual compares comparable dynamic values with == and falls back to
// reflect.DeepEqual for slices, maps and structs holding them.
func DefaultEqual[T any](a, b T) bool {
	ra, rb := any(a), any(b)
	if ra == nil || rb == nil {
		return ra == nil && rb == nil
	}
	va, vb := reflect.ValueOf(ra), reflect.ValueOf(rb)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Comparable() && vb.Comparable() {
		return va.Equal(vb)
	}
	return reflect.DeepEqual(ra, rb)
}

// IdentityEqual compares slices element by element with ==. It is the right
// comparison for slices of pointers, where DeepEqual would walk the pointees.
func IdentityEqual[E comparable](a, b []E) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Readable is implemented by Value and Computed.
type Readable[T any] interface {
	Get() T
	Peek() T
}

// Value is an observable cell.
type Value[T any] struct {
	rt    *Runtime
	v     T
	ver   int64
	equal EqualFunc[T]
}

// NewValue creates a Value compared with DefaultEqual.
func NewValue[T any](rt *Runtime, init T) *Value[T] {
	return NewValueEq(rt, init, DefaultEqual[T])
}

// NewValueEq creates a Value with a custom equality.
func NewValueEq[T any](rt *Runtime, init T, eq EqualFunc[T]) *Value[T] {
	return &Value[T]{rt: rt, v: init, equal: eq}
}

// Get returns the value and registers it as a dependency.
func (v *Value[T]) Get() T {
	v.rt.track(v)
	return v.v
}

// Peek returns the value without registering a dependency.
func (v *Value[T]) Peek() T {
	return v.v
}

// Set stores x. Writing an equal value is not a change: the version stays
// put and no effect is notified.
func (v *Value[T]) Set(x T) {
	if v.equal(v.v, x) {
		return
	}
	v.v = x
	v.ver++
	v.rt.changed()
}

// Update applies fn to the current value and stores the result.
func (v *Value[T]) Update(fn func(T) T) {
	v.Set(fn(v.v))
}

// Version returns how many changes the value went through. Reading it
// registers a dependency.
func (v *Value[T]) Version() int64 {
	v.rt.track(v)
	return v.ver
}

func (v *Value[T]) version() int64 { return v.ver }

func (v *Value[T]) refresh() {}
