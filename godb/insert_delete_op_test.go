package godb

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestInsertOpInsertsAllChildRows(t *testing.T) {
	sm, err := NewStorageManager("", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStorageManager: %v", err)
	}
	defer sm.Shutdown()

	cid, err := sm.CreateContainer()
	if err != nil {
		t.Fatalf("CreateContainer: %v", err)
	}

	desc, rows := intRows(t, []int64{10, 20, 30})
	child := NewTupleIterator(desc, rows)
	ins := NewInsertOp(sm, cid, child)

	ins.Configure(false)
	ins.Open()
	defer ins.Close()

	result, err := ins.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if result.Fields[0].Int != 3 {
		t.Fatalf("InsertOp reported %v rows, want 3", result.Fields[0])
	}

	it, err := sm.GetIterator(cid)
	if err != nil {
		t.Fatalf("GetIterator: %v", err)
	}
	count := 0
	for {
		_, _, ok, err := it.Next()
		if err != nil {
			t.Fatalf("iterator Next: %v", err)
		}
		if !ok {
			break
		}
		count++
	}
	if count != 3 {
		t.Fatalf("container holds %d records after insert, want 3", count)
	}
}

func TestDeleteOpDeletesScannedRows(t *testing.T) {
	sm, err := NewStorageManager("", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStorageManager: %v", err)
	}
	defer sm.Shutdown()

	cid, _ := sm.CreateContainer()
	desc := NewTableSchema([]string{"v"}, []FieldKind{FieldKindInt})
	for _, v := range []int64{1, 2} {
		tup, _ := NewTuple(desc, []Field{IntField(v)})
		data, _ := EncodeTuple(tup)
		sm.InsertValue(cid, data)
	}

	scan := NewHeapFileScan(sm, cid, desc)
	del := NewDeleteOp(sm, scan)
	del.Configure(false)
	del.Open()

	result, err := del.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if result.Fields[0].Int != 2 {
		t.Fatalf("DeleteOp reported %v rows, want 2", result.Fields[0])
	}
	del.Close()

	it, err := sm.GetIterator(cid)
	if err != nil {
		t.Fatalf("GetIterator: %v", err)
	}
	_, _, ok, err := it.Next()
	if err != nil {
		t.Fatalf("iterator Next: %v", err)
	}
	if ok {
		t.Fatalf("container still has live rows after DeleteOp")
	}
}
