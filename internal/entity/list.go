package entity

import (
	"fmt"

	"github.com/roach88/formstate/internal/reactive"
	"github.com/roach88/formstate/internal/schema"
)

// List is an ordered, observable sequence of nodes of one entity.
type List struct {
	b      *Builder
	entity *schema.Entity
	owner  *Node
	items  *reactive.Value[[]*Node]
}

func newList(b *Builder, e *schema.Entity, owner *Node) *List {
	return &List{
		b:      b,
		entity: e,
		owner:  owner,
		items:  reactive.NewValueEq(b.rt, []*Node(nil), reactive.IdentityEqual[*Node]),
	}
}

// Kind returns schema.KindList.
func (l *List) Kind() schema.Kind { return schema.KindList }

func (l *List) member() {}

// Entity returns the entity every item is built from.
func (l *List) Entity() *schema.Entity { return l.entity }

// Len returns the number of items and registers a dependency on the list.
func (l *List) Len() int {
	return len(l.items.Get())
}

// At returns item i. It panics when i is out of range, like a slice index.
func (l *List) At(i int) *Node {
	return l.items.Get()[i]
}

// Items returns a copy of the items.
func (l *List) Items() []*Node {
	return append([]*Node(nil), l.items.Get()...)
}

// Append builds a node from data and adds it at the end.
func (l *List) Append(data map[string]any) (*Node, error) {
	items := l.items.Peek()
	item, err := l.buildItem(data, indexPath(l.entity.Name(), len(items)))
	if err != nil {
		return nil, err
	}
	l.items.Set(append(append([]*Node(nil), items...), item))
	return item, nil
}

// Remove deletes item i.
func (l *List) Remove(i int) error {
	items := l.items.Peek()
	if i < 0 || i >= len(items) {
		return fmt.Errorf("list %s: index %d out of range [0,%d)", l.entity.Name(), i, len(items))
	}
	next := make([]*Node, 0, len(items)-1)
	next = append(next, items[:i]...)
	next = append(next, items[i+1:]...)
	l.items.Set(next)
	return nil
}

// Set replaces every item with nodes built from data, which must be a list
// of objects or nil.
func (l *List) Set(data any) error {
	items, err := l.buildItems(data, l.entity.Name())
	if err != nil {
		return err
	}
	l.items.Set(items)
	return nil
}

// Clear removes every item.
func (l *List) Clear() {
	l.items.Set(nil)
}

func (l *List) buildItems(raw any, path string) ([]*Node, error) {
	var elems []map[string]any
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []map[string]any:
		elems = v
	case []any:
		elems = make([]map[string]any, len(v))
		for i, e := range v {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, &MergeError{Path: indexPath(path, i), Message: fmt.Sprintf("expected an object, got %T", e)}
			}
			elems[i] = m
		}
	default:
		return nil, &MergeError{Path: path, Message: fmt.Sprintf("expected a list, got %T", raw)}
	}

	items := make([]*Node, len(elems))
	for i, data := range elems {
		item, err := l.buildItem(data, indexPath(path, i))
		if err != nil {
			return nil, err
		}
		items[i] = item
	}
	return items, nil
}

// buildItem allocates and fills a node that nothing observes yet.
func (l *List) buildItem(data map[string]any, path string) (*Node, error) {
	item, err := l.b.build(l.entity, nil)
	if err != nil {
		return nil, err
	}
	item.parent = l.owner
	apply, err := item.plan(data, path)
	if err != nil {
		return nil, err
	}
	l.b.rt.Batch(func() {
		for _, fn := range apply {
			fn()
		}
	})
	return item, nil
}
