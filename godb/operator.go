package godb

// OperatorIterator is the stateful iterator protocol every operator in a
// query plan implements. This replaces the closure-returning iterator
// style used elsewhere in this lab's lineage: an operator's lifecycle is
// explicit (Configure, then Open, then any number of Next/Rewind, then
// Close) rather than implicit in a captured closure, which is what lets
// Aggregate and NestedLoopJoin materialize state across a rewind instead
// of re-running their child from scratch.
//
// Callers must Configure before Open, and Open before any Next or Rewind
// call. Calling these out of order is a ContractViolation: a bug in
// the caller, not a recoverable error, so implementations panic via
// fatalf rather than return an error.
type OperatorIterator interface {
	// Configure tells the operator whether Rewind will ever be called on
	// it during this query's lifetime. Leaves such as HeapFileScan use
	// this to decide whether to buffer their rows or stream them.
	Configure(willRewind bool) error

	// Open prepares the operator to produce tuples, opening and
	// configuring any children as appropriate. Open is called exactly
	// once per Configure.
	Open() error

	// Next returns the next output tuple, or (nil, nil) once exhausted.
	Next() (*Tuple, error)

	// Rewind resets the operator to produce its output again from the
	// start. Only valid if Configure(true) was used.
	Rewind() error

	// Close releases any resources (including closing children) and
	// makes the operator unusable until a fresh Configure/Open.
	Close() error

	// Schema returns the TableSchema of tuples this operator produces.
	// Valid at any time, including before Configure.
	Schema() *TableSchema
}
