package harness

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/formstate/internal/entity"
	"github.com/roach88/formstate/internal/ir"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Path     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s", e.Type)
	if e.Path != "" {
		fmt.Fprintf(&buf, " (%s)", e.Path)
	}
	fmt.Fprintf(&buf, "\n  Expected: %s\n  Actual: %s", e.Expected, e.Actual)
	return buf.String()
}

// evaluate checks every assertion and returns the failure messages.
func (h *Harness) evaluate(ctx context.Context, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := h.check(ctx, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func (h *Harness) check(ctx context.Context, a Assertion) error {
	switch a.Type {
	case AssertFlat:
		return h.assertFlat(a)
	case AssertError, AssertVisibleError:
		f, err := h.form.FieldAt(a.Path)
		if err != nil {
			return err
		}
		want, _ := a.Expect.(string)
		got := f.Error()
		if a.Type == AssertError {
			got = f.ValidationError()
		}
		return compare(a, want, got)
	case AssertTouched:
		f, err := h.form.FieldAt(a.Path)
		if err != nil {
			return err
		}
		return compare(a, a.Expect.(bool), f.Touched())
	case AssertDirty:
		return compare(a, a.Expect.(bool), h.form.IsDirty())
	case AssertSaveResult:
		return h.assertSaveResult(a)
	case AssertListLen:
		l, err := h.form.ListAt(a.Path)
		if err != nil {
			return err
		}
		return compare(a, *a.Count, l.Len())
	case AssertHistory:
		key := h.scenario.Key
		if key == "" {
			key = h.scenario.Name
		}
		history, err := h.store.History(ctx, h.scenario.Entity, key)
		if err != nil {
			return err
		}
		return compare(a, *a.Count, len(history))
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

// assertFlat compares canonical encodings so that YAML ints match int64
// field values and key order does not matter.
func (h *Harness) assertFlat(a Assertion) error {
	actual := h.form.Flat()
	if a.Target == "source" {
		actual = entity.ToFlatValues(h.src)
	}
	want, err := ir.MarshalCanonical(a.Expect)
	if err != nil {
		return fmt.Errorf("encode expected: %w", err)
	}
	got, err := ir.MarshalCanonical(actual)
	if err != nil {
		return fmt.Errorf("encode actual: %w", err)
	}
	if !bytes.Equal(want, got) {
		return &AssertionError{Type: a.Type, Path: a.Target, Expected: string(want), Actual: string(got)}
	}
	return nil
}

func (h *Harness) assertSaveResult(a Assertion) error {
	if !h.saved {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprint(a.Expect), Actual: "no save step ran"}
	}
	got := "accepted"
	if h.lastSave != nil {
		got = "rejected"
	}
	if err := compare(a, a.Expect.(string), got); err != nil {
		return err
	}
	if got == "rejected" && len(a.Failing) > 0 {
		failing := failingFields(h.lastSave)
		if !slices.Equal(a.Failing, failing) {
			return &AssertionError{
				Type:     a.Type,
				Expected: "failing " + strings.Join(a.Failing, ", "),
				Actual:   "failing " + strings.Join(failing, ", "),
			}
		}
	}
	return nil
}

func compare[T comparable](a Assertion, want, got T) error {
	if want != got {
		return &AssertionError{Type: a.Type, Path: a.Path, Expected: fmt.Sprintf("%v", want), Actual: fmt.Sprintf("%v", got)}
	}
	return nil
}
