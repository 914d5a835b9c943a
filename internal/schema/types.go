package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
)

// ValueType is the declared type of a field value.
type ValueType int

const (
	TypeAny ValueType = iota
	TypeString
	TypeInt
	TypeFloat
	TypeBool
	TypeStrings
	TypeInts
	TypeFloats
	TypeBools
)

var valueTypeNames = map[ValueType]string{
	TypeAny:     "any",
	TypeString:  "string",
	TypeInt:     "int",
	TypeFloat:   "float",
	TypeBool:    "bool",
	TypeStrings: "[string]",
	TypeInts:    "[int]",
	TypeFloats:  "[float]",
	TypeBools:   "[bool]",
}

// String returns the name used in schema files.
func (t ValueType) String() string {
	if n, ok := valueTypeNames[t]; ok {
		return n
	}
	return "unknown"
}

// ParseValueType maps a schema file name to a ValueType. "number" is
// accepted as an alias of "float".
func ParseValueType(s string) (ValueType, error) {
	switch s {
	case "", "any":
		return TypeAny, nil
	case "number":
		return TypeFloat, nil
	}
	for t, n := range valueTypeNames {
		if n == s {
			return t, nil
		}
	}
	return TypeAny, fmt.Errorf("unknown field type %q", s)
}

// IsList reports whether values of this type are slices.
func (t ValueType) IsList() bool {
	return t >= TypeStrings
}

// Elem returns the element type of a list type, or t itself.
func (t ValueType) Elem() ValueType {
	switch t {
	case TypeStrings:
		return TypeString
	case TypeInts:
		return TypeInt
	case TypeFloats:
		return TypeFloat
	case TypeBools:
		return TypeBool
	default:
		return t
	}
}

// Coerce converts v to the canonical Go representation of t:
// string, int64, float64, bool, or a slice of those. nil always stays nil.
func (t ValueType) Coerce(v any) (any, error) {
	if v == nil || t == TypeAny {
		return v, nil
	}
	if t.IsList() {
		return coerceList(t.Elem(), v)
	}
	return coerceScalar(t, v)
}

func coerceScalar(t ValueType, v any) (any, error) {
	switch t {
	case TypeString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case TypeBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case TypeInt:
		return toInt(v)
	case TypeFloat:
		return toFloat(v)
	}
	return nil, fmt.Errorf("cannot use %T as %s", v, t)
}

func coerceList(elem ValueType, v any) (any, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("cannot use %T as [%s]", v, elem)
	}
	n := rv.Len()
	var (
		strs   []string
		ints   []int64
		floats []float64
		bools  []bool
	)
	for i := 0; i < n; i++ {
		c, err := coerceScalar(elem, rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		switch elem {
		case TypeString:
			strs = append(strs, c.(string))
		case TypeInt:
			ints = append(ints, c.(int64))
		case TypeFloat:
			floats = append(floats, c.(float64))
		case TypeBool:
			bools = append(bools, c.(bool))
		}
	}
	switch elem {
	case TypeString:
		return nonNil(strs), nil
	case TypeInt:
		return nonNil(ints), nil
	case TypeFloat:
		return nonNil(floats), nil
	default:
		return nonNil(bools), nil
	}
}

// nonNil keeps empty lists distinct from undefined values.
func nonNil[E any](s []E) []E {
	if s == nil {
		return []E{}
	}
	return s
}

func toInt(v any) (any, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint:
		if uint64(n) > math.MaxInt64 {
			return nil, fmt.Errorf("%d overflows int", n)
		}
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return nil, fmt.Errorf("%d overflows int", n)
		}
		return int64(n), nil
	case float32:
		return toInt(float64(n))
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return nil, fmt.Errorf("%v is not an integer", n)
		}
		return int64(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return nil, fmt.Errorf("%s is not an integer", n)
		}
		return i, nil
	}
	return nil, fmt.Errorf("cannot use %T as int", v)
}

func toFloat(v any) (any, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("%s is not a number", n)
		}
		return f, nil
	}
	i, err := toInt(v)
	if err != nil {
		return nil, fmt.Errorf("cannot use %T as float", v)
	}
	return float64(i.(int64)), nil
}
