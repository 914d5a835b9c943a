// Package validation computes the error message of a field from its value,
// its required flag, its domain validators and an optional override.
//
// Evaluation is a pure function. The entity package wraps it in a reactive
// computation so the message follows every change of its inputs.
package validation

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/roach88/formstate/internal/i18n"
	"github.com/roach88/formstate/internal/schema"
)

// Input holds everything the error of a field depends on.
type Input struct {
	Value      any
	IsRequired bool
	Validators []schema.Validator
	// Override, when non-nil, replaces evaluation. An empty string means
	// "no error".
	Override *string
}

// Failure is one failing validator, as an untranslated message.
type Failure struct {
	Key  string
	Args []any
}

// Evaluate returns the translated error for in, or "" when there is none.
//
// Precedence: override, then required, then validators. Validators are not
// run on a nil value. Failing messages are translated one by one and joined
// with ", " in declaration order.
func Evaluate(in Input, tr i18n.Translator) string {
	if in.Override != nil {
		return *in.Override
	}
	if in.IsRequired && IsEmpty(in.Value) {
		return tr.Translate(i18n.KeyRequired)
	}
	failures := Check(in.Value, in.Validators)
	if len(failures) == 0 {
		return ""
	}
	msgs := make([]string, len(failures))
	for i, f := range failures {
		msgs[i] = tr.Translate(f.Key, f.Args...)
	}
	return strings.Join(msgs, ", ")
}

// IsEmpty reports whether v counts as missing for a required field: nil,
// the empty string, or an empty slice or map. 0 and false are values.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Check runs validators against v and returns the failures in order.
func Check(v any, validators []schema.Validator) []Failure {
	if v == nil {
		return nil
	}
	var out []Failure
	for _, val := range validators {
		if f, failed := check(v, val); failed {
			if custom := val.Message(); custom != "" {
				f.Key = custom
			}
			out = append(out, f)
		}
	}
	return out
}

func check(v any, val schema.Validator) (Failure, bool) {
	switch val := val.(type) {
	case schema.RegexValidator:
		if val.Regex != nil && !val.Regex.MatchString(text(v)) {
			return Failure{Key: i18n.KeyRegex}, true
		}
	case schema.EmailValidator:
		if !isEmail(text(v)) {
			return Failure{Key: i18n.KeyEmail}, true
		}
	case schema.NumberValidator:
		return checkNumber(v, val)
	case schema.StringValidator:
		n := utf8.RuneCountInString(text(v))
		if val.MinLength > 0 && n < val.MinLength {
			return Failure{Key: i18n.KeyStringMinLength, Args: []any{val.MinLength}}, true
		}
		if val.MaxLength > 0 && n > val.MaxLength {
			return Failure{Key: i18n.KeyStringMaxLength, Args: []any{val.MaxLength}}, true
		}
	case schema.DateValidator:
		if !isDate(v, val.Layout) {
			return Failure{Key: i18n.KeyDate}, true
		}
	case schema.FuncValidator:
		if val.Func != nil && !val.Func(v) {
			return Failure{Key: i18n.KeyPredicate}, true
		}
	}
	return Failure{}, false
}

func checkNumber(v any, val schema.NumberValidator) (Failure, bool) {
	n, ok := number(v)
	if !ok {
		return Failure{Key: i18n.KeyNumberInvalid}, true
	}
	if val.Min != nil && n < *val.Min {
		return Failure{Key: i18n.KeyNumberMin, Args: []any{*val.Min}}, true
	}
	if val.Max != nil && n > *val.Max {
		return Failure{Key: i18n.KeyNumberMax, Args: []any{*val.Max}}, true
	}
	return Failure{}, false
}

func number(v any) (float64, bool) {
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
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func isDate(v any, layout string) bool {
	if _, ok := v.(time.Time); ok {
		return true
	}
	if layout == "" {
		layout = time.RFC3339
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, err := time.Parse(layout, s)
	return err == nil
}

func text(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
