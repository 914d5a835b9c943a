// Package schema holds the declarative description of entities.
//
// An Entity is a named, immutable mapping from property names to entries.
// Entries form a closed union:
//
//   - FieldEntry: a scalar value with its Domain, label and required flag
//   - ObjectEntry: a nested object, referencing another entity by name
//   - ListEntry: an ordered list of objects, referencing an entity by name
//
// Object and list entries reference entities by name only. Names are
// resolved through a Registry when nodes are built, which is what lets an
// entity contain a list of itself without infinite structural expansion.
// Embedding an entity in itself through object entries alone has no finite
// instance; Registry.Check reports such cycles.
//
// Nothing in this package is mutated after construction. Variants of a field
// entry are produced with Merge, which layers Patch values over a base entry.
package schema
