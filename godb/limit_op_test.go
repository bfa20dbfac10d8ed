package godb

import "testing"

func TestLimitCapsOutput(t *testing.T) {
	desc, rows := intRows(t, []int64{1, 2, 3, 4, 5})
	child := NewTupleIterator(desc, rows)

	limit := NewLimitOp(&ConstExpr{Value: IntField(2)}, child)
	limit.Configure(false)
	limit.Open()
	defer limit.Close()

	var got []int64
	for {
		tup, err := limit.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if tup == nil {
			break
		}
		got = append(got, tup.Fields[0].Int)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("limit 2 = %v, want [1 2]", got)
	}
}

func TestLimitLargerThanInputYieldsAll(t *testing.T) {
	desc, rows := intRows(t, []int64{1, 2})
	child := NewTupleIterator(desc, rows)

	limit := NewLimitOp(&ConstExpr{Value: IntField(10)}, child)
	limit.Configure(false)
	limit.Open()
	defer limit.Close()

	count := 0
	for {
		tup, _ := limit.Next()
		if tup == nil {
			break
		}
		count++
	}
	if count != 2 {
		t.Fatalf("limit 10 over 2 rows yielded %d, want 2", count)
	}
}
