// Package harness runs form scenarios against compiled entity specs.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: operation_save
//	description: "Saving is rejected until every required field is set"
//	specs:
//	  - operation.cue
//	entity: operation
//	source: { numero: "OP-1" }
//	form: { edit: true }
//	steps:
//	  - op: write
//	    path: numero
//	    value: ""
//	  - op: save
//	    expect_error: "save rejected"
//	assertions:
//	  - type: save_result
//	    expect: rejected
//	    failing: [numero]
//
// # Steps
//
//   - set, set_source: merge data into the form or the source node
//   - clear: clear every working value
//   - write, text: assign a field by path, raw or through the unformatter
//   - edit: switch edit mode for the form, or one field when path is set
//   - focus, blur: mark a field as the active input or release it
//   - append, remove: edit a list by path
//   - save, reset: commit or discard the form
//   - persist: store the source's flattened values as a snapshot
//
// # Assertion Types
//
//   - flat: flattened values of the form (default) or the source
//   - error, visible_error: raw or displayed error of one field
//   - touched: touched state of one field
//   - save_result: outcome of the last save
//   - dirty: whether the form differs from the source
//   - list_len: number of items of a list
//   - history: number of stored snapshots
//
// # Deterministic Testing
//
// Every run uses a deterministic logical clock, sequential session and
// snapshot IDs, the English message catalog and an in-memory SQLite store,
// so the trace is identical across runs and can be compared with a golden
// file.
package harness
