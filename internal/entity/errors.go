package entity

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrReadOnly is returned when writing a computed field without a setter.
var ErrReadOnly = errors.New("field is read-only")

// MergeError reports a payload that does not fit the node it is merged
// into: a scalar that cannot be coerced to the field type, or an object or
// list entry given something other than an object or a list.
type MergeError struct {
	Path    string
	Message string
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merge %s: %s", e.Path, e.Message)
}

// IsMergeError reports whether err wraps a MergeError.
func IsMergeError(err error) bool {
	var me *MergeError
	return errors.As(err, &me)
}

func joinPath(base, prop string) string {
	if base == "" {
		return prop
	}
	return base + "." + prop
}

func indexPath(base string, i int) string {
	return base + "[" + strconv.Itoa(i) + "]"
}
