// Package form projects an entity.Node into an exclusive editing session.
//
// MakeFormNode copies the source node into a working node of the same
// shape. Edits go to the working node only; Save commits them back to the
// source when every field is valid, Reset discards them. While a session is
// open no other session can be opened on the same source node.
//
// Each field tracks whether it was touched since the last commit. Its error
// is shown only in edit mode, once touched or when error display is forced,
// and never while the field is the active input.
package form
