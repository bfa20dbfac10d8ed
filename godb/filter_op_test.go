package godb

import "testing"

func intRows(t *testing.T, vals []int64) (*TableSchema, []*Tuple) {
	desc := NewTableSchema([]string{"v"}, []FieldKind{FieldKindInt})
	var rows []*Tuple
	for _, v := range vals {
		tup, err := NewTuple(desc, []Field{IntField(v)})
		if err != nil {
			t.Fatalf("NewTuple: %v", err)
		}
		rows = append(rows, tup)
	}
	return desc, rows
}

func TestFilterPassesMatchingRows(t *testing.T) {
	desc, rows := intRows(t, []int64{1, 2, 3, 4})
	child := NewTupleIterator(desc, rows)

	left, _ := NewFieldExpr(desc, "v")
	right := &ConstExpr{Value: IntField(2)}
	f := NewFilter(left, OpGreaterThan, right, child)

	f.Configure(false)
	f.Open()
	defer f.Close()

	var got []int64
	for {
		tup, err := f.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if tup == nil {
			break
		}
		got = append(got, tup.Fields[0].Int)
	}
	if len(got) != 2 || got[0] != 3 || got[1] != 4 {
		t.Fatalf("filter > 2 = %v, want [3 4]", got)
	}
}
