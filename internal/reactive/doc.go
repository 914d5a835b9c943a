// Package reactive provides the dependency-tracking substrate used by the
// entity and form layers.
//
// A Runtime owns a logical clock and a stack of active computations. Three
// primitives are built on it:
//
//   - Value: an observable cell. Reads inside a computation register a
//     dependency; writes that change the value advance the clock.
//   - Computed: a memoized pure derivation. It is evaluated lazily on read and
//     re-evaluated only when one of the sources it read last time changed.
//   - Effect: a side-effecting reaction re-run after writes that touch its
//     dependencies. Batch groups several writes into one notification.
//
// # Evaluation model
//
// Validation is pull-based. Every Value carries a version that increments on
// change; a Computed remembers the versions it observed. On read, a Computed
// first compares the global clock with the tick it last validated at. If no
// write happened since, the cached value is returned as is. Otherwise each
// dependency is brought up to date and its version compared. Only when a
// version moved is the derivation re-run. Reading a computed value therefore
// costs at most its own re-evaluation plus that of changed dependencies.
//
// # Concurrency
//
// A Runtime is single-threaded. All values, computations and effects created
// from one Runtime, its Clock included, must be used from one goroutine at a
// time.
package reactive
