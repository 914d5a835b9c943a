package schema

import (
	"errors"
	"fmt"
	"strings"
)

// SchemaNotFoundError reports a reference to an unregistered entity.
type SchemaNotFoundError struct {
	Name string
	// From is the "entity.prop" holding the reference, when known.
	From string
	// Suggestion is the closest registered name, if any is close enough.
	Suggestion string
}

func (e *SchemaNotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "schema %q not found", e.Name)
	if e.From != "" {
		fmt.Fprintf(&b, " (referenced by %s)", e.From)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "; did you mean %q?", e.Suggestion)
	}
	return b.String()
}

// IsSchemaNotFound reports whether err wraps a SchemaNotFoundError.
func IsSchemaNotFound(err error) bool {
	var nf *SchemaNotFoundError
	return errors.As(err, &nf)
}

// DuplicateEntityError reports a second registration under the same name.
type DuplicateEntityError struct {
	Name string
}

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("entity %q is already registered", e.Name)
}

// EmbeddingCycleError reports entities embedding each other through object
// entries only. Such a shape has no finite instance.
type EmbeddingCycleError struct {
	Path []string
}

func (e *EmbeddingCycleError) Error() string {
	return fmt.Sprintf("object embedding cycle: %s", strings.Join(e.Path, " → "))
}
