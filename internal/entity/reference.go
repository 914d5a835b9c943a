package entity

import (
	"fmt"

	"github.com/roach88/formstate/internal/reactive"
)

// ReferenceList is a list of code/label rows used to display coded values.
type ReferenceList struct {
	ValueKey string
	LabelKey string
	Items    []map[string]any
}

// MakeReferenceList builds a reference list. Empty keys default to "code"
// and "label".
func MakeReferenceList(items []map[string]any, valueKey, labelKey string) ReferenceList {
	if valueKey == "" {
		valueKey = "code"
	}
	if labelKey == "" {
		labelKey = "label"
	}
	return ReferenceList{ValueKey: valueKey, LabelKey: labelKey, Items: items}
}

// Lookup returns the label of the row whose code equals value.
func (l ReferenceList) Lookup(value any) (any, bool) {
	for _, row := range l.Items {
		if sameValue(row[l.ValueKey], value) {
			label, ok := row[l.LabelKey]
			return label, ok
		}
	}
	return nil, false
}

// StringFor renders the value of f for display. When refs holds a row for
// the value its label is rendered instead. The domain display formatter
// applies when set; an undefined value renders as "".
func StringFor(f *Field, refs ...ReferenceList) string {
	v := f.Value()
	for _, ref := range refs {
		if label, ok := ref.Lookup(v); ok && label != nil {
			v = label
			break
		}
	}
	if format := f.Domain().DisplayFormatter; format != nil {
		return format(v)
	}
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// sameValue compares codes, treating integers and floats of equal value as
// the same code.
func sameValue(a, b any) bool {
	if reactive.DefaultEqual(a, b) {
		return true
	}
	fa, okA := asFloat(a)
	fb, okB := asFloat(b)
	return okA && okB && fa == fb
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
