package godb

// DeleteOp drains its child and deletes each tuple's stored record via
// StorageManager (using the ValueId the tuple was scanned with), then
// yields a single one-column "count" tuple with the number of rows
// deleted. Child tuples that were never read off disk (Rid has no
// location) are skipped rather than erroring.
type DeleteOp struct {
	sm     *StorageManager
	child  OperatorIterator
	schema *TableSchema

	willRewind bool
	opened     bool
	done       bool
}

// NewDeleteOp builds a DeleteOp over child.
func NewDeleteOp(sm *StorageManager, child OperatorIterator) *DeleteOp {
	return &DeleteOp{
		sm:     sm,
		child:  child,
		schema: NewTableSchema([]string{"count"}, []FieldKind{FieldKindInt}),
	}
}

func (d *DeleteOp) Configure(willRewind bool) error {
	d.willRewind = willRewind
	return d.child.Configure(false)
}

func (d *DeleteOp) Open() error {
	if d.opened {
		fatalf("DeleteOp.Open called twice without Close")
	}
	d.opened = true
	d.done = false
	return d.child.Open()
}

func (d *DeleteOp) Next() (*Tuple, error) {
	if !d.opened {
		fatalf("DeleteOp.Next called before Open")
	}
	if d.done {
		return nil, nil
	}
	d.done = true

	var count int64
	for {
		t, err := d.child.Next()
		if err != nil {
			return nil, err
		}
		if t == nil {
			break
		}
		if !t.Rid.HasLocation() {
			continue
		}
		if err := d.sm.DeleteValue(t.Rid); err != nil {
			return nil, err
		}
		count++
	}
	return &Tuple{Desc: d.schema, Fields: []Field{IntField(count)}}, nil
}

func (d *DeleteOp) Rewind() error {
	if !d.willRewind {
		fatalf("DeleteOp.Rewind called without Configure(true)")
	}
	d.done = false
	return d.child.Rewind()
}

func (d *DeleteOp) Close() error {
	d.opened = false
	return d.child.Close()
}

func (d *DeleteOp) Schema() *TableSchema {
	return d.schema
}
