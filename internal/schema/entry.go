package schema

import (
	"errors"
	"fmt"
)

// Kind tags the variant of an Entry.
type Kind int

const (
	KindField Kind = iota
	KindObject
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindField:
		return "field"
	case KindObject:
		return "object"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Entry is one property of an entity.
type Entry interface {
	// Prop returns the property name.
	Prop() string
	Kind() Kind
	isEntry()
}

// FieldEntry describes a scalar field.
type FieldEntry struct {
	Name       string
	Label      string
	IsRequired bool
	Type       ValueType
	Domain     Domain
}

// ObjectEntry describes a nested object owned by its parent.
type ObjectEntry struct {
	Name       string
	EntityName string
}

// ListEntry describes an ordered list of nested objects.
type ListEntry struct {
	Name       string
	EntityName string
}

func (e FieldEntry) Prop() string  { return e.Name }
func (e ObjectEntry) Prop() string { return e.Name }
func (e ListEntry) Prop() string   { return e.Name }

func (FieldEntry) Kind() Kind  { return KindField }
func (ObjectEntry) Kind() Kind { return KindObject }
func (ListEntry) Kind() Kind   { return KindList }

func (FieldEntry) isEntry()  {}
func (ObjectEntry) isEntry() {}
func (ListEntry) isEntry()   {}

// Ref returns the entity name referenced by an object or list entry.
func Ref(e Entry) (string, bool) {
	switch e := e.(type) {
	case ObjectEntry:
		return e.EntityName, true
	case ListEntry:
		return e.EntityName, true
	default:
		return "", false
	}
}

// Entity is the immutable description of an object's shape.
type Entity struct {
	name    string
	entries map[string]Entry
	order   []string
}

// NewEntity builds an entity from entries in declaration order.
func NewEntity(name string, entries ...Entry) (*Entity, error) {
	if name == "" {
		return nil, errors.New("entity name is required")
	}
	e := &Entity{
		name:    name,
		entries: make(map[string]Entry, len(entries)),
		order:   make([]string, 0, len(entries)),
	}
	for _, entry := range entries {
		prop := entry.Prop()
		if prop == "" {
			return nil, fmt.Errorf("entity %s: property name is required", name)
		}
		if _, dup := e.entries[prop]; dup {
			return nil, fmt.Errorf("entity %s: duplicate property %q", name, prop)
		}
		if ref, ok := Ref(entry); ok && ref == "" {
			return nil, fmt.Errorf("entity %s: %s %q must reference an entity", name, entry.Kind(), prop)
		}
		e.entries[prop] = entry
		e.order = append(e.order, prop)
	}
	return e, nil
}

// MustEntity is like NewEntity but panics on error. Intended for schemas
// declared in Go source.
func MustEntity(name string, entries ...Entry) *Entity {
	e, err := NewEntity(name, entries...)
	if err != nil {
		panic(err)
	}
	return e
}

// Name returns the entity name.
func (e *Entity) Name() string {
	return e.name
}

// Entry returns the entry for a property.
func (e *Entity) Entry(prop string) (Entry, bool) {
	entry, ok := e.entries[prop]
	return entry, ok
}

// Props returns property names in declaration order.
func (e *Entity) Props() []string {
	return append([]string(nil), e.order...)
}

// Entries returns entries in declaration order.
func (e *Entity) Entries() []Entry {
	out := make([]Entry, len(e.order))
	for i, prop := range e.order {
		out[i] = e.entries[prop]
	}
	return out
}

// Len returns the number of properties.
func (e *Entity) Len() int {
	return len(e.order)
}
