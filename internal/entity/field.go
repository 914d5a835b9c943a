package entity

import (
	"fmt"

	"github.com/roach88/formstate/internal/i18n"
	"github.com/roach88/formstate/internal/reactive"
	"github.com/roach88/formstate/internal/schema"
	"github.com/roach88/formstate/internal/validation"
)

// cell holds the value of a field. *reactive.Value[any] backs schema
// fields; *reactive.Computed[any] backs computed fields.
type cell interface {
	Get() any
	Peek() any
	Set(any)
	Version() int64
}

type metaSource = *reactive.Computed[schema.FieldEntry]

// Field is one scalar value with its metadata and computed error.
type Field struct {
	rt       *reactive.Runtime
	tr       i18n.Translator
	meta     *reactive.Value[metaSource]
	cell     cell
	readOnly bool
	override *reactive.Value[*string]
	err      *reactive.Computed[string]

	// mirror is the field a clone takes its metadata and fallback error
	// override from. nil outside clones.
	mirror *reactive.Value[*Field]
}

func sameOverride(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func staticMeta(rt *reactive.Runtime, entry schema.FieldEntry) metaSource {
	return reactive.NewComputed(rt, func() schema.FieldEntry { return entry })
}

func patchedMeta(rt *reactive.Runtime, base func() schema.FieldEntry, patch func() schema.Patch) metaSource {
	return reactive.NewComputed(rt, func() schema.FieldEntry {
		return schema.Merge(base(), patch())
	})
}

func newField(rt *reactive.Runtime, tr i18n.Translator, meta metaSource, c cell, readOnly bool, override *reactive.Value[*string]) *Field {
	f := &Field{
		rt:       rt,
		tr:       tr,
		meta:     reactive.NewValue(rt, meta),
		cell:     c,
		readOnly: readOnly,
		override: override,
	}
	if f.override == nil {
		f.override = reactive.NewValueEq[*string](rt, nil, sameOverride)
	}
	f.err = reactive.NewComputed(rt, func() string {
		entry := f.Meta()
		return validation.Evaluate(validation.Input{
			Value:      f.cell.Get(),
			IsRequired: entry.IsRequired,
			Validators: entry.Domain.Validators,
			Override:   f.activeOverride(),
		}, f.tr)
	})
	return f
}

func (f *Field) activeOverride() *string {
	if o := f.override.Get(); o != nil || f.mirror == nil {
		return o
	}
	return f.mirror.Get().activeOverride()
}

func newSchemaField(rt *reactive.Runtime, tr i18n.Translator, entry schema.FieldEntry) *Field {
	f := newField(rt, tr, staticMeta(rt, entry), reactive.NewValue[any](rt, nil), false, nil)
	f.err.Named(entry.Name)
	return f
}

// newMirrorField builds a field with its own value and error override that
// follows the metadata of src, including patches applied to src later.
func newMirrorField(src *Field) *Field {
	mirror := reactive.NewValueEq(src.rt, src, func(a, b *Field) bool { return a == b })
	meta := reactive.NewComputed(src.rt, func() schema.FieldEntry {
		return mirror.Get().Meta()
	})
	f := newField(src.rt, src.tr, meta, reactive.NewValue(src.rt, src.cell.Peek()), src.readOnly, nil)
	f.mirror = mirror
	f.err.Named(reactive.Untracked(src.rt, src.Meta).Name)
	return f
}

// MakeField builds a standalone field holding value, not attached to any
// node. Patches are merged over an empty entry.
func MakeField(rt *reactive.Runtime, tr i18n.Translator, value any, patches ...schema.Patch) *Field {
	entry := schema.Merge(schema.FieldEntry{}, patches...)
	return newField(rt, tr, staticMeta(rt, entry), reactive.NewValue(rt, value), false, nil)
}

// MakeComputedField builds a standalone field whose value is produced by
// get. Writes go to set; a nil set makes the field read-only.
func MakeComputedField(rt *reactive.Runtime, tr i18n.Translator, get func() any, set func(any), patches ...schema.Patch) *Field {
	entry := schema.Merge(schema.FieldEntry{}, patches...)
	var c *reactive.Computed[any]
	if set != nil {
		c = reactive.NewWritableComputed(rt, get, set)
	} else {
		c = reactive.NewComputed(rt, get)
	}
	return newField(rt, tr, staticMeta(rt, entry), c, set == nil, nil)
}

// Kind returns schema.KindField.
func (f *Field) Kind() schema.Kind { return schema.KindField }

func (f *Field) member() {}

// Meta returns the resolved field entry, patches included.
func (f *Field) Meta() schema.FieldEntry {
	return f.meta.Get().Get()
}

func (f *Field) Name() string { return f.Meta().Name }

func (f *Field) Label() string { return f.Meta().Label }

func (f *Field) IsRequired() bool { return f.Meta().IsRequired }

func (f *Field) Domain() schema.Domain { return f.Meta().Domain }

// Value returns the current value and registers a dependency on it.
func (f *Field) Value() any {
	return f.cell.Get()
}

// Peek returns the current value without registering a dependency.
func (f *Field) Peek() any {
	return f.cell.Peek()
}

// ValueVersion counts the changes of the value. Writing an equal value is
// not a change.
func (f *Field) ValueVersion() int64 {
	return f.cell.Version()
}

// Set coerces v to the declared type of the field and stores it.
func (f *Field) Set(v any) error {
	if f.readOnly {
		return ErrReadOnly
	}
	coerced, err := f.coerce(v)
	if err != nil {
		return err
	}
	f.cell.Set(coerced)
	return nil
}

func (f *Field) coerce(v any) (any, error) {
	entry := reactive.Untracked(f.rt, f.Meta)
	coerced, err := entry.Type.Coerce(v)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", entry.Name, err)
	}
	return coerced, nil
}

// Error returns the current error message, or "".
func (f *Field) Error() string {
	return f.err.Get()
}

// SetError overrides validation with msg. An empty msg forces "no error".
func (f *Field) SetError(msg string) {
	f.override.Set(&msg)
}

// ClearError removes the override set by SetError.
func (f *Field) ClearError() {
	f.override.Set(nil)
}

// Patch merges p over the metadata of f in place. Only f is affected; the
// schema entry and sibling fields keep their metadata.
func (f *Field) Patch(p schema.Patch) {
	f.PatchFunc(func() schema.Patch { return p })
}

// PatchFunc is like Patch with a patch computed by fn. fn is re-evaluated
// whenever the reactive state it reads changes.
func (f *Field) PatchFunc(fn func() schema.Patch) {
	prev := f.meta.Peek()
	f.meta.Set(patchedMeta(f.rt, prev.Get, fn))
}

// Patch returns a new field sharing the value and error override of f,
// with p merged over its metadata. f is left untouched, and later patches
// applied to f in place show through.
func Patch(f *Field, p schema.Patch) *Field {
	return PatchFunc(f, func() schema.Patch { return p })
}

// PatchFunc is like Patch with a patch computed by fn.
func PatchFunc(f *Field, fn func() schema.Patch) *Field {
	g := newField(f.rt, f.tr, patchedMeta(f.rt, f.Meta, fn), f.cell, f.readOnly, f.override)
	g.mirror = f.mirror
	return g
}
