// Package ir is the canonical representation of flattened entity values.
//
// Flat values produced by the entity layer are converted into a small sealed
// set of types, serialized as RFC 8785 canonical JSON, and hashed with
// domain separation. Snapshots, dirty checks and golden traces all go
// through this package so equal data always yields equal bytes.
//
// ir imports nothing internal.
package ir
