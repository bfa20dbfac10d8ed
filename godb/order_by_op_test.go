package godb

import "testing"

func TestOrderByAscending(t *testing.T) {
	desc, rows := intRows(t, []int64{3, 1, 2})
	child := NewTupleIterator(desc, rows)

	vExpr, _ := NewFieldExpr(desc, "v")
	ob, err := NewOrderBy([]Expr{vExpr}, child, []bool{true})
	if err != nil {
		t.Fatalf("NewOrderBy: %v", err)
	}

	ob.Configure(false)
	if err := ob.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ob.Close()

	var got []int64
	for {
		tup, err := ob.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if tup == nil {
			break
		}
		got = append(got, tup.Fields[0].Int)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("order by ascending = %v, want [1 2 3]", got)
	}
}

func TestOrderByDescending(t *testing.T) {
	desc, rows := intRows(t, []int64{3, 1, 2})
	child := NewTupleIterator(desc, rows)

	vExpr, _ := NewFieldExpr(desc, "v")
	ob, _ := NewOrderBy([]Expr{vExpr}, child, []bool{false})

	ob.Configure(false)
	ob.Open()
	defer ob.Close()

	var got []int64
	for {
		tup, _ := ob.Next()
		if tup == nil {
			break
		}
		got = append(got, tup.Fields[0].Int)
	}
	if len(got) != 3 || got[0] != 3 || got[1] != 2 || got[2] != 1 {
		t.Fatalf("order by descending = %v, want [3 2 1]", got)
	}
}
