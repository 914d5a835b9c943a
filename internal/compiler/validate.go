package compiler

import (
	"errors"
	"fmt"

	"github.com/roach88/formstate/internal/schema"
)

// Validation error codes (E100-E199).
const (
	ErrEmptyEntity      = "E101" // entity declares no property
	ErrUnknownEntityRef = "E102" // object or list entry names an unregistered entity
	ErrEmbeddingCycle   = "E103" // entities embed each other through objects
	ErrMissingLabel     = "E104" // field entry without label
)

// ValidationError is one problem found in a set of compiled entities.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks every entity of reg. It returns all problems found,
// not only the first.
func Validate(reg *schema.Registry) []ValidationError {
	var errs []ValidationError

	for _, e := range reg.Entities() {
		if e.Len() == 0 {
			errs = append(errs, ValidationError{
				Field:   "entity." + e.Name(),
				Message: "entity declares no property",
				Code:    ErrEmptyEntity,
			})
		}
		for _, entry := range e.Entries() {
			if f, ok := entry.(schema.FieldEntry); ok && f.Label == "" {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("entity.%s.fields.%s.label", e.Name(), f.Name),
					Message: "field label is empty",
					Code:    ErrMissingLabel,
				})
			}
		}
	}

	for _, err := range reg.Check() {
		var (
			nf  *schema.SchemaNotFoundError
			cyc *schema.EmbeddingCycleError
		)
		switch {
		case errors.As(err, &nf):
			errs = append(errs, ValidationError{
				Field:   "entity." + nf.From,
				Message: nf.Error(),
				Code:    ErrUnknownEntityRef,
			})
		case errors.As(err, &cyc):
			errs = append(errs, ValidationError{
				Field:   "entity." + cyc.Path[0],
				Message: cyc.Error(),
				Code:    ErrEmbeddingCycle,
			})
		}
	}
	return errs
}
