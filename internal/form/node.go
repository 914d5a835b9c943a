package form

import (
	"github.com/roach88/formstate/internal/entity"
	"github.com/roach88/formstate/internal/schema"
)

// FormNode is the form view of one node of the working tree. Session-wide
// operations (Save, Reset, Close, SetEdit) act on the whole form whichever
// node they are called on.
type FormNode struct {
	s    *session
	node *entity.Node
}

// ID returns the session id.
func (n *FormNode) ID() string { return n.s.id }

// Node returns the working node holding uncommitted edits.
func (n *FormNode) Node() *entity.Node { return n.node }

// Source returns the node the session edits.
func (n *FormNode) Source() *entity.Node { return n.s.src }

// Entity returns the entity of this node.
func (n *FormNode) Entity() *schema.Entity { return n.node.Entity() }

// Field returns the form field for prop, or nil.
func (n *FormNode) Field(prop string) *FormField {
	f := n.node.Field(prop)
	if f == nil {
		return nil
	}
	return n.s.field(f)
}

// Object returns the form view of a nested object, or nil.
func (n *FormNode) Object(prop string) *FormNode {
	o := n.node.Object(prop)
	if o == nil {
		return nil
	}
	return n.s.node(o)
}

// List returns the form view of a list, or nil.
func (n *FormNode) List(prop string) *FormList {
	l := n.node.List(prop)
	if l == nil {
		return nil
	}
	return n.s.list(l)
}

// FieldAt returns the form field at a path such as "lignes[1].id".
func (n *FormNode) FieldAt(path string) (*FormField, error) {
	f, err := entity.FieldAt(n.node, path)
	if err != nil {
		return nil, err
	}
	return n.s.field(f), nil
}

// ListAt returns the form list at a path such as "structure.items".
func (n *FormNode) ListAt(path string) (*FormList, error) {
	l, err := entity.ListAt(n.node, path)
	if err != nil {
		return nil, err
	}
	return n.s.list(l), nil
}

// Set merges data into the working node.
func (n *FormNode) Set(data map[string]any) error {
	if n.s.closed {
		return ErrSessionClosed
	}
	return n.node.Set(data)
}

// Flat returns the flattened working values of this node.
func (n *FormNode) Flat() map[string]any {
	return entity.ToFlatValues(n.node)
}

// IsEdit reports the form-wide edit mode.
func (n *FormNode) IsEdit() bool { return n.s.edit.Get() }

// SetEdit switches the whole form between edit and view mode. Per-field
// overrides set with FormField.SetEdit still win.
func (n *FormNode) SetEdit(edit bool) { n.s.edit.Set(edit) }

// SetForceErrorDisplay toggles display of untouched fields' errors.
func (n *FormNode) SetForceErrorDisplay(force bool) { n.s.force.Set(force) }

// Errors returns the validation error of every invalid field under this
// node by path, whatever their visibility. Paths are relative to the node.
func (n *FormNode) Errors() map[string]string {
	out := make(map[string]string)
	entity.Walk(n.node, func(path string, f *entity.Field) bool {
		if msg := f.Error(); msg != "" {
			out[path] = msg
		}
		return true
	})
	return out
}

// VisibleErrors returns the errors currently shown under this node, by path.
func (n *FormNode) VisibleErrors() map[string]string {
	out := make(map[string]string)
	entity.Walk(n.node, func(path string, f *entity.Field) bool {
		if msg := n.s.field(f).Error(); msg != "" {
			out[path] = msg
		}
		return true
	})
	return out
}

// ErrorCount returns the number of invalid fields under this node. Save
// checks the whole form whichever node it is called on.
func (n *FormNode) ErrorCount() int {
	count := 0
	entity.Walk(n.node, func(_ string, f *entity.Field) bool {
		if f.Error() != "" {
			count++
		}
		return true
	})
	return count
}

// IsDirty reports whether the working values differ from the source.
func (n *FormNode) IsDirty() bool { return n.s.dirty() }

// Save commits the working values into the source when every field is
// valid. Otherwise it returns a *SaveRejected and changes nothing. A
// successful save makes every field untouched again.
func (n *FormNode) Save() error { return n.s.save() }

// Reset discards edits and reloads the working values from the source.
func (n *FormNode) Reset() error { return n.s.reset() }

// Close ends the session and releases the source node. Calling Close more
// than once is a no-op.
func (n *FormNode) Close() { n.s.close() }

// Closed reports whether Close was called.
func (n *FormNode) Closed() bool { return n.s.closed }

// FormList is the form view of a list of the working tree.
type FormList struct {
	s    *session
	list *entity.List
}

// Entity returns the entity of the items.
func (l *FormList) Entity() *schema.Entity { return l.list.Entity() }

// Len returns the number of items.
func (l *FormList) Len() int { return l.list.Len() }

// At returns the form view of item i.
func (l *FormList) At(i int) *FormNode { return l.s.node(l.list.At(i)) }

// Items returns the form views of every item.
func (l *FormList) Items() []*FormNode {
	items := l.list.Items()
	out := make([]*FormNode, len(items))
	for i, item := range items {
		out[i] = l.s.node(item)
	}
	return out
}

// Append adds an item built from data.
func (l *FormList) Append(data map[string]any) (*FormNode, error) {
	if l.s.closed {
		return nil, ErrSessionClosed
	}
	item, err := l.list.Append(data)
	if err != nil {
		return nil, err
	}
	// Wrap the new fields now so later writes count as touches.
	entity.Walk(item, func(_ string, f *entity.Field) bool {
		l.s.field(f)
		return true
	})
	return l.s.node(item), nil
}

// Remove deletes item i.
func (l *FormList) Remove(i int) error {
	if l.s.closed {
		return ErrSessionClosed
	}
	items := l.list.Items()
	if err := l.list.Remove(i); err != nil {
		return err
	}
	delete(l.s.nodes, items[i])
	return nil
}
