package godb

// TupleIterator is the simplest OperatorIterator: it replays a
// caller-supplied, already-materialized slice of tuples. It is used both
// as a query-plan leaf over literal data and, internally, by tests that
// need a child operator with known contents.
type TupleIterator struct {
	schema *TableSchema
	source []*Tuple

	willRewind bool
	opened     bool
	pos        int
}

// NewTupleIterator wraps tuples (all of which must match schema) as an
// OperatorIterator.
func NewTupleIterator(schema *TableSchema, tuples []*Tuple) *TupleIterator {
	return &TupleIterator{schema: schema, source: tuples}
}

func (it *TupleIterator) Configure(willRewind bool) error {
	it.willRewind = willRewind
	return nil
}

func (it *TupleIterator) Open() error {
	if it.opened {
		fatalf("TupleIterator.Open called twice without Close")
	}
	it.opened = true
	it.pos = 0
	return nil
}

func (it *TupleIterator) Next() (*Tuple, error) {
	if !it.opened {
		fatalf("TupleIterator.Next called before Open")
	}
	if it.pos >= len(it.source) {
		return nil, nil
	}
	t := it.source[it.pos]
	it.pos++
	return t, nil
}

func (it *TupleIterator) Rewind() error {
	if !it.willRewind {
		fatalf("TupleIterator.Rewind called without Configure(true)")
	}
	it.pos = 0
	return nil
}

func (it *TupleIterator) Close() error {
	it.opened = false
	return nil
}

func (it *TupleIterator) Schema() *TableSchema {
	return it.schema
}
