package entity

import (
	"fmt"

	"github.com/roach88/formstate/internal/reactive"
	"github.com/roach88/formstate/internal/schema"
)

// Node is the live instance of one entity.
type Node struct {
	b       *Builder
	entity  *schema.Entity
	members map[string]Member
	parent  *Node
	session string
}

// Kind returns schema.KindObject.
func (n *Node) Kind() schema.Kind { return schema.KindObject }

func (n *Node) member() {}

// Entity returns the schema the node was built from.
func (n *Node) Entity() *schema.Entity { return n.entity }

// Builder returns the builder that allocated the node.
func (n *Node) Builder() *Builder { return n.b }

// Runtime returns the runtime of the node.
func (n *Node) Runtime() *reactive.Runtime { return n.b.rt }

// Props returns property names in declaration order.
func (n *Node) Props() []string { return n.entity.Props() }

// Member returns the member for prop.
func (n *Node) Member(prop string) (Member, bool) {
	m, ok := n.members[prop]
	return m, ok
}

// Field returns the field for prop, or nil when prop is not a field.
func (n *Node) Field(prop string) *Field {
	f, _ := n.members[prop].(*Field)
	return f
}

// Object returns the nested node for prop, or nil when prop is not an
// object entry.
func (n *Node) Object(prop string) *Node {
	o, _ := n.members[prop].(*Node)
	return o
}

// List returns the list for prop, or nil when prop is not a list entry.
func (n *Node) List(prop string) *List {
	l, _ := n.members[prop].(*List)
	return l
}

// Set deep-merges data into the node. Keys without a matching property are
// ignored. Lists are replaced by one fresh node per element. Nothing is
// written when any part of data is malformed; the whole merge is then
// reported as a *MergeError and effects observe a single change.
func (n *Node) Set(data map[string]any) error {
	apply, err := n.plan(data, "")
	if err != nil {
		return err
	}
	n.b.rt.Batch(func() {
		for _, fn := range apply {
			fn()
		}
	})
	return nil
}

func (n *Node) plan(data map[string]any, path string) ([]func(), error) {
	var apply []func()
	for _, prop := range n.entity.Props() {
		raw, ok := data[prop]
		if !ok {
			continue
		}
		at := joinPath(path, prop)
		switch m := n.members[prop].(type) {
		case *Field:
			v, err := m.coerce(raw)
			if err != nil {
				return nil, &MergeError{Path: at, Message: err.Error()}
			}
			apply = append(apply, func() { m.cell.Set(v) })
		case *Node:
			if raw == nil {
				apply = append(apply, m.clear)
				continue
			}
			sub, ok := raw.(map[string]any)
			if !ok {
				return nil, &MergeError{Path: at, Message: fmt.Sprintf("expected an object, got %T", raw)}
			}
			more, err := m.plan(sub, at)
			if err != nil {
				return nil, err
			}
			apply = append(apply, more...)
		case *List:
			items, err := m.buildItems(raw, at)
			if err != nil {
				return nil, err
			}
			apply = append(apply, func() { m.items.Set(items) })
		}
	}
	return apply, nil
}

// Clear resets every field to undefined and every list to zero items,
// recursing into nested objects.
func (n *Node) Clear() {
	n.b.rt.Batch(n.clear)
}

func (n *Node) clear() {
	for _, m := range n.members {
		switch m := m.(type) {
		case *Field:
			m.cell.Set(nil)
		case *Node:
			m.clear()
		case *List:
			m.items.Set(nil)
		}
	}
}

// BeginEdit marks the node as edited by session id. It reports false when
// another session already holds the node, one of its ancestors, or any node
// below it.
func (n *Node) BeginEdit(id string) bool {
	for p := n; p != nil; p = p.parent {
		if p.session != "" && p.session != id {
			return false
		}
	}
	if n.heldBelow(id) {
		return false
	}
	n.session = id
	return true
}

func (n *Node) heldBelow(id string) bool {
	for _, m := range n.members {
		switch m := m.(type) {
		case *Node:
			if (m.session != "" && m.session != id) || m.heldBelow(id) {
				return true
			}
		case *List:
			for _, item := range m.items.Peek() {
				if (item.session != "" && item.session != id) || item.heldBelow(id) {
					return true
				}
			}
		}
	}
	return false
}

// EndEdit releases the node if session id holds it.
func (n *Node) EndEdit(id string) {
	if n.session == id {
		n.session = ""
	}
}

// EditSession returns the id of the session editing the node, or "".
func (n *Node) EditSession() string { return n.session }

// Walk calls fn for every field under n, depth first in declaration order,
// with paths like "name", "structure.label" or "items[1].label". Walk stops
// when fn returns false.
func Walk(n *Node, fn func(path string, f *Field) bool) {
	walk(n, "", fn)
}

func walk(n *Node, path string, fn func(string, *Field) bool) bool {
	for _, prop := range n.entity.Props() {
		at := joinPath(path, prop)
		switch m := n.members[prop].(type) {
		case *Field:
			if !fn(at, m) {
				return false
			}
		case *Node:
			if !walk(m, at, fn) {
				return false
			}
		case *List:
			for i, item := range m.Items() {
				if !walk(item, indexPath(at, i), fn) {
					return false
				}
			}
		}
	}
	return true
}
