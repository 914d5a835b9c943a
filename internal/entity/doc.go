// Package entity turns schema entities into live trees of reactive values.
//
// A Node mirrors one schema.Entity: scalar entries become *Field, object
// entries become child *Node values owned by their parent, and list entries
// become *List sequences whose items are created from data, never from the
// schema alone. That last rule is what lets an entity contain a list of
// itself.
//
// Every Field carries its resolved metadata and an error message computed
// from its value, required flag, domain validators and optional override.
// The error is a reactive.Computed: it is never stored and never stale.
//
// Nodes are not safe for concurrent use. All reads and writes of one tree
// happen on the goroutine that owns its reactive.Runtime.
package entity
