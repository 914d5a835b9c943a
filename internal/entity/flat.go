package entity

// ToFlatValues projects n to plain data: fields become their bare values,
// nested nodes nested maps, and lists []any of maps, in item order. Every
// property of the entity is present; undefined fields map to nil.
//
// Reads are tracked, so a computation calling ToFlatValues follows every
// value in the tree.
func ToFlatValues(n *Node) map[string]any {
	out := make(map[string]any, len(n.members))
	for prop, m := range n.members {
		switch m := m.(type) {
		case *Field:
			out[prop] = m.Value()
		case *Node:
			out[prop] = ToFlatValues(m)
		case *List:
			items := m.items.Get()
			flat := make([]any, len(items))
			for i, item := range items {
				flat[i] = ToFlatValues(item)
			}
			out[prop] = flat
		}
	}
	return out
}
