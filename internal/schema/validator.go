package schema

import "regexp"

// ValidatorKind tags the variant of a Validator.
type ValidatorKind string

const (
	ValidatorRegex    ValidatorKind = "regex"
	ValidatorEmail    ValidatorKind = "email"
	ValidatorNumber   ValidatorKind = "number"
	ValidatorString   ValidatorKind = "string"
	ValidatorDate     ValidatorKind = "date"
	ValidatorFunction ValidatorKind = "function"
)

// Validator is a closed union of validation rules. Evaluation lives in the
// validation package; this package only describes rules.
type Validator interface {
	Kind() ValidatorKind
	// Message returns the custom message key, or "" for the default one.
	Message() string
	isValidator()
}

// RegexValidator fails when the string form of the value does not match.
type RegexValidator struct {
	Regex      *regexp.Regexp
	MessageKey string
}

// EmailValidator fails when the value is not an email address.
type EmailValidator struct {
	MessageKey string
}

// NumberValidator bounds a numeric value. Nil bounds are open.
type NumberValidator struct {
	Min        *float64
	Max        *float64
	MessageKey string
}

// StringValidator bounds the length of a string value, counted in runes.
// A zero bound is open.
type StringValidator struct {
	MinLength  int
	MaxLength  int
	MessageKey string
}

// DateValidator fails when the value does not parse with Layout. An empty
// layout means RFC 3339.
type DateValidator struct {
	Layout     string
	MessageKey string
}

// FuncValidator fails when Func returns false.
type FuncValidator struct {
	Name       string
	Func       func(value any) bool
	MessageKey string
}

func (RegexValidator) Kind() ValidatorKind  { return ValidatorRegex }
func (EmailValidator) Kind() ValidatorKind  { return ValidatorEmail }
func (NumberValidator) Kind() ValidatorKind { return ValidatorNumber }
func (StringValidator) Kind() ValidatorKind { return ValidatorString }
func (DateValidator) Kind() ValidatorKind   { return ValidatorDate }
func (FuncValidator) Kind() ValidatorKind   { return ValidatorFunction }

func (v RegexValidator) Message() string  { return v.MessageKey }
func (v EmailValidator) Message() string  { return v.MessageKey }
func (v NumberValidator) Message() string { return v.MessageKey }
func (v StringValidator) Message() string { return v.MessageKey }
func (v DateValidator) Message() string   { return v.MessageKey }
func (v FuncValidator) Message() string   { return v.MessageKey }

func (RegexValidator) isValidator()  {}
func (EmailValidator) isValidator()  {}
func (NumberValidator) isValidator() {}
func (StringValidator) isValidator() {}
func (DateValidator) isValidator()   {}
func (FuncValidator) isValidator()   {}

// Regex builds a RegexValidator, panicking on an invalid expression.
func Regex(expr, messageKey string) RegexValidator {
	return RegexValidator{Regex: regexp.MustCompile(expr), MessageKey: messageKey}
}

// Predicate builds a FuncValidator.
func Predicate(name string, fn func(any) bool, messageKey string) FuncValidator {
	return FuncValidator{Name: name, Func: fn, MessageKey: messageKey}
}
