package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"unicode/utf16"
)

// IRValue is a sealed interface over the value types of a flattened entity:
// IRNull, IRString, IRInt, IRFloat, IRBool, IRArray and IRObject.
type IRValue interface {
	irValue()
}

// IRNull is an undefined field value.
type IRNull struct{}

// IRString is a string value.
type IRString string

// IRInt is an integer value.
type IRInt int64

// IRFloat is a finite floating point value. NaN and infinities cannot be
// represented.
type IRFloat float64

// IRBool is a boolean value.
type IRBool bool

// IRArray is an ordered list of values.
type IRArray []IRValue

// IRObject maps property names to values. Use SortedKeys for deterministic
// iteration.
type IRObject map[string]IRValue

func (IRNull) irValue()   {}
func (IRString) irValue() {}
func (IRInt) irValue()    {}
func (IRFloat) irValue()  {}
func (IRBool) irValue()   {}
func (IRArray) irValue()  {}
func (IRObject) irValue() {}

// SortedKeys returns keys in RFC 8785 order (UTF-16 code units).
func (obj IRObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 orders by UTF-16 code units. Plain string comparison
// orders by UTF-8 bytes, which differs for characters above U+FFFF.
func compareKeysRFC8785(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}

// FromGo converts a flattened Go value into an IRValue. Accepted inputs are
// nil, strings, bools, Go integer and float kinds, json.Number, slices of
// any of those, and map[string]any.
func FromGo(v any) (IRValue, error) {
	switch val := v.(type) {
	case nil:
		return IRNull{}, nil
	case IRValue:
		return val, nil
	case string:
		return IRString(val), nil
	case bool:
		return IRBool(val), nil
	case int:
		return IRInt(val), nil
	case int32:
		return IRInt(val), nil
	case int64:
		return IRInt(val), nil
	case float32:
		return floatValue(float64(val))
	case float64:
		return floatValue(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return IRInt(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", val)
		}
		return floatValue(f)
	case map[string]any:
		obj := make(IRObject, len(val))
		for k, elem := range val {
			irElem, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = irElem
		}
		return obj, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		arr := make(IRArray, rv.Len())
		for i := range arr {
			irElem, err := FromGo(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = irElem
		}
		return arr, nil
	}
	return nil, fmt.Errorf("unsupported type: %T", v)
}

func floatValue(f float64) (IRValue, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite float %v", f)
	}
	return IRFloat(f), nil
}

// ToGo converts an IRValue back to plain Go values: nil, string, int64,
// float64, bool, []any and map[string]any.
func ToGo(v IRValue) any {
	switch val := v.(type) {
	case IRString:
		return string(val)
	case IRInt:
		return int64(val)
	case IRFloat:
		return float64(val)
	case IRBool:
		return bool(val)
	case IRArray:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToGo(elem)
		}
		return out
	case IRObject:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = ToGo(elem)
		}
		return out
	default:
		return nil
	}
}

// Unmarshal decodes JSON into an IRValue. Integral numbers without a
// fraction or exponent become IRInt, every other number IRFloat.
func Unmarshal(data []byte) (IRValue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return fromJSON(raw)
}

func fromJSON(v any) (IRValue, error) {
	switch val := v.(type) {
	case json.Number:
		if !bytes.ContainsAny([]byte(val), ".eE") {
			if i, err := val.Int64(); err == nil {
				return IRInt(i), nil
			}
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", val)
		}
		return floatValue(f)
	case []any:
		arr := make(IRArray, len(val))
		for i, elem := range val {
			irElem, err := fromJSON(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = irElem
		}
		return arr, nil
	case map[string]any:
		obj := make(IRObject, len(val))
		for k, elem := range val {
			irElem, err := fromJSON(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = irElem
		}
		return obj, nil
	default:
		return FromGo(val)
	}
}
