package entity

import "github.com/roach88/formstate/internal/schema"

// Member is one property of a Node: a *Field, a *Node or a *List.
type Member interface {
	Kind() schema.Kind
	member()
}

// IsEntityField reports whether x is a field.
func IsEntityField(x any) bool {
	_, ok := x.(*Field)
	return ok
}

// IsStoreNode reports whether x is a node.
func IsStoreNode(x any) bool {
	_, ok := x.(*Node)
	return ok
}

// IsStoreListNode reports whether x is a list of nodes.
func IsStoreListNode(x any) bool {
	_, ok := x.(*List)
	return ok
}
