package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/formstate/internal/entity"
	"github.com/roach88/formstate/internal/reactive"
	"github.com/roach88/formstate/internal/schema"
	"github.com/roach88/formstate/internal/validation"
)

// FormField is a working field with edit mode, touched state and error
// visibility.
type FormField struct {
	s        *session
	f        *entity.Field
	edit     *reactive.Value[*bool]
	baseline *reactive.Value[int64]
	initial  *reactive.Value[bool]
	active   *reactive.Value[bool]
	touched  *reactive.Computed[bool]
	visible  *reactive.Computed[string]
}

func newFormField(s *session, f *entity.Field) *FormField {
	ff := &FormField{
		s:        s,
		f:        f,
		edit:     reactive.NewValue[*bool](s.rt, nil),
		baseline: reactive.NewValue(s.rt, int64(0)),
		initial:  reactive.NewValue(s.rt, false),
		active:   reactive.NewValue(s.rt, false),
	}
	ff.rebase(true)

	ff.touched = reactive.NewComputed(s.rt, func() bool {
		return ff.initial.Get() || ff.f.ValueVersion() != ff.baseline.Get()
	})
	ff.visible = reactive.NewComputed(s.rt, func() string {
		if !ff.IsEdit() {
			return ""
		}
		msg := ff.f.Error()
		if msg == "" || ff.active.Get() {
			return ""
		}
		if ff.touched.Get() || ff.s.force.Get() {
			return msg
		}
		return ""
	})
	return ff
}

// rebase makes the current value the baseline. With fresh set, a field
// counts as touched from the start when it opens in edit mode with a value.
func (ff *FormField) rebase(fresh bool) {
	reactive.Untracked(ff.s.rt, func() struct{} {
		ff.baseline.Set(ff.f.ValueVersion())
		ff.initial.Set(fresh && ff.IsEdit() && !validation.IsEmpty(ff.f.Value()))
		return struct{}{}
	})
}

// Field returns the underlying working field.
func (ff *FormField) Field() *entity.Field { return ff.f }

func (ff *FormField) Name() string { return ff.f.Name() }

func (ff *FormField) Label() string { return ff.f.Label() }

func (ff *FormField) Meta() schema.FieldEntry { return ff.f.Meta() }

// Value returns the working value.
func (ff *FormField) Value() any { return ff.f.Value() }

// Set writes the working value.
func (ff *FormField) Set(v any) error {
	if ff.s.closed {
		return ErrSessionClosed
	}
	return ff.f.Set(v)
}

// IsEdit reports the edit mode of the field: its own override if set,
// the form-wide mode otherwise.
func (ff *FormField) IsEdit() bool {
	if e := ff.edit.Get(); e != nil {
		return *e
	}
	return ff.s.edit.Get()
}

// SetEdit overrides the edit mode for this field only.
func (ff *FormField) SetEdit(edit bool) { ff.edit.Set(&edit) }

// ClearEdit removes the override set by SetEdit.
func (ff *FormField) ClearEdit() { ff.edit.Set(nil) }

// Touched reports whether the value changed since the last commit, or the
// field opened in edit mode with a value.
func (ff *FormField) Touched() bool { return ff.touched.Get() }

// Active reports whether the field is the input being manipulated.
func (ff *FormField) Active() bool { return ff.active.Get() }

// Focus marks the field as the active input, hiding its error.
func (ff *FormField) Focus() { ff.active.Set(true) }

// Blur ends Focus.
func (ff *FormField) Blur() { ff.active.Set(false) }

// ValidationError returns the error of the field whatever its visibility.
func (ff *FormField) ValidationError() string { return ff.f.Error() }

// Error returns the error to display, or "" while it must stay hidden.
func (ff *FormField) Error() string { return ff.visible.Get() }

// InputText renders the value for an input with the domain input
// formatter.
func (ff *FormField) InputText() string {
	v := ff.f.Value()
	if format := ff.f.Domain().InputFormatter; format != nil {
		return format(v)
	}
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// SetText parses input text with the domain unformatter, or according to
// the declared type when the domain has none, and writes the result.
func (ff *FormField) SetText(text string) error {
	meta := reactive.Untracked(ff.s.rt, ff.f.Meta)
	if unformat := meta.Domain.Unformatter; unformat != nil {
		if v := unformat(text); v != nil {
			return ff.Set(v)
		}
		return ff.Set(text)
	}
	v, err := parseText(meta.Type, text)
	if err != nil {
		return fmt.Errorf("field %s: %w", meta.Name, err)
	}
	return ff.Set(v)
}

func parseText(t schema.ValueType, text string) (any, error) {
	if t == schema.TypeAny || t == schema.TypeString {
		return text, nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	switch t {
	case schema.TypeInt:
		return strconv.ParseInt(text, 10, 64)
	case schema.TypeFloat:
		return strconv.ParseFloat(text, 64)
	case schema.TypeBool:
		return strconv.ParseBool(text)
	}
	parts := strings.Split(text, ",")
	elems := make([]any, len(parts))
	for i, p := range parts {
		v, err := parseText(t.Elem(), strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	return elems, nil
}
