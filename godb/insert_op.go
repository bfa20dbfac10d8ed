package godb

// InsertOp drains its child and inserts every tuple it produces into a
// container via StorageManager, then yields a single one-column "count"
// tuple with the number of rows inserted.
type InsertOp struct {
	sm     *StorageManager
	cid    ContainerId
	child  OperatorIterator
	schema *TableSchema

	willRewind bool
	opened     bool
	done       bool
}

// NewInsertOp builds an InsertOp writing child's output into cid.
func NewInsertOp(sm *StorageManager, cid ContainerId, child OperatorIterator) *InsertOp {
	return &InsertOp{
		sm:     sm,
		cid:    cid,
		child:  child,
		schema: NewTableSchema([]string{"count"}, []FieldKind{FieldKindInt}),
	}
}

func (i *InsertOp) Configure(willRewind bool) error {
	i.willRewind = willRewind
	return i.child.Configure(false)
}

func (i *InsertOp) Open() error {
	if i.opened {
		fatalf("InsertOp.Open called twice without Close")
	}
	i.opened = true
	i.done = false
	return i.child.Open()
}

func (i *InsertOp) Next() (*Tuple, error) {
	if !i.opened {
		fatalf("InsertOp.Next called before Open")
	}
	if i.done {
		return nil, nil
	}
	i.done = true

	var count int64
	for {
		t, err := i.child.Next()
		if err != nil {
			return nil, err
		}
		if t == nil {
			break
		}
		data, err := EncodeTuple(t)
		if err != nil {
			return nil, err
		}
		if _, err := i.sm.InsertValue(i.cid, data); err != nil {
			return nil, err
		}
		count++
	}
	return &Tuple{Desc: i.schema, Fields: []Field{IntField(count)}}, nil
}

func (i *InsertOp) Rewind() error {
	if !i.willRewind {
		fatalf("InsertOp.Rewind called without Configure(true)")
	}
	i.done = false
	return i.child.Rewind()
}

func (i *InsertOp) Close() error {
	i.opened = false
	return i.child.Close()
}

func (i *InsertOp) Schema() *TableSchema {
	return i.schema
}
