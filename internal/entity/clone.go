package entity

import "github.com/roach88/formstate/internal/schema"

// Clone returns a detached copy of n holding the same values. Each field of
// the copy has its own value and error override but follows the metadata
// of the field it was copied from, so patches applied to n show through.
// An error override set on the original applies to the copy until the copy
// sets its own.
func Clone(n *Node) *Node {
	return clone(n, true)
}

// Load copies the values of src into dst in place. dst must be a clone of
// src or have been built for the same entity. Fields of a clone switch to
// following the fields they are loaded from. List items are reused by
// position: missing items are added and surplus items dropped, so nodes
// taken from dst before the call stay attached while their index exists.
func Load(dst, src *Node) {
	dst.b.rt.Batch(func() { load(dst, src, true) })
}

// Assign is Load for a dst that is not a clone. Items added to dst lists
// are plain nodes carrying the schema metadata.
func Assign(dst, src *Node) {
	dst.b.rt.Batch(func() { load(dst, src, false) })
}

func clone(n *Node, mirror bool) *Node {
	c := &Node{
		b:       n.b,
		entity:  n.entity,
		members: make(map[string]Member, len(n.members)),
	}
	for _, entry := range n.entity.Entries() {
		switch m := n.members[entry.Prop()].(type) {
		case *Field:
			if mirror {
				c.members[entry.Prop()] = newMirrorField(m)
				continue
			}
			f := newSchemaField(n.b.rt, n.b.tr, entry.(schema.FieldEntry))
			f.cell.Set(m.cell.Peek())
			c.members[entry.Prop()] = f
		case *Node:
			o := clone(m, mirror)
			o.parent = c
			c.members[entry.Prop()] = o
		case *List:
			l := newList(n.b, m.entity, c)
			items := m.items.Peek()
			if len(items) > 0 {
				copied := make([]*Node, len(items))
				for i, item := range items {
					copied[i] = clone(item, mirror)
					copied[i].parent = c
				}
				l.items.Set(copied)
			}
			c.members[entry.Prop()] = l
		}
	}
	return c
}

func load(dst, src *Node, mirror bool) {
	for prop, m := range dst.members {
		switch m := m.(type) {
		case *Field:
			from, ok := src.members[prop].(*Field)
			if !ok {
				continue
			}
			if m.mirror != nil {
				m.mirror.Set(from)
			}
			if !m.readOnly {
				m.cell.Set(from.cell.Peek())
			}
		case *Node:
			if from, ok := src.members[prop].(*Node); ok {
				load(m, from, mirror)
			}
		case *List:
			from, ok := src.members[prop].(*List)
			if !ok {
				continue
			}
			cur := m.items.Peek()
			want := from.items.Peek()
			next := make([]*Node, len(want))
			for i, item := range want {
				if i < len(cur) {
					load(cur[i], item, mirror)
					next[i] = cur[i]
					continue
				}
				next[i] = clone(item, mirror)
				next[i].parent = m.owner
			}
			m.items.Set(next)
		}
	}
}
