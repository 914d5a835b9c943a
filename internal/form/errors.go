package form

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSessionActive is returned when opening a form on a node that
	// another open form is editing, directly or through an enclosing or
	// nested node.
	ErrSessionActive = errors.New("node is already being edited")

	// ErrSessionClosed is returned by operations on a closed form.
	ErrSessionClosed = errors.New("form session is closed")
)

// SaveRejected is returned by Save when fields are invalid. The source
// node is left unchanged.
type SaveRejected struct {
	// FailingFields holds field paths in declaration order, like "name",
	// "structure.libelle" or "lignes[1].id".
	FailingFields []string
}

func (e *SaveRejected) Error() string {
	return fmt.Sprintf("save rejected: invalid fields: %s", strings.Join(e.FailingFields, ", "))
}

// IsSaveRejected reports whether err wraps a SaveRejected.
func IsSaveRejected(err error) bool {
	var sr *SaveRejected
	return errors.As(err, &sr)
}
