package godb

import "testing"

func TestProjectSelectsNamedColumnInNewOrder(t *testing.T) {
	desc := NewTableSchema([]string{"a", "b"}, []FieldKind{FieldKindInt, FieldKindString})
	tup, _ := NewTuple(desc, []Field{IntField(1), StringField("x")})
	child := NewTupleIterator(desc, []*Tuple{tup})

	bExpr, _ := NewFieldExpr(desc, "b")
	proj, err := NewProjectOp([]Expr{bExpr}, []string{"b"}, false, child)
	if err != nil {
		t.Fatalf("NewProjectOp: %v", err)
	}

	proj.Configure(false)
	proj.Open()
	defer proj.Close()

	out, err := proj.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if len(out.Fields) != 1 || out.Fields[0].Str != "x" {
		t.Fatalf("project result = %v, want [x]", out.Fields)
	}
}

func TestProjectDistinctSuppressesDuplicates(t *testing.T) {
	desc, rows := intRows(t, []int64{1, 1, 2})
	child := NewTupleIterator(desc, rows)

	vExpr, _ := NewFieldExpr(desc, "v")
	proj, err := NewProjectOp([]Expr{vExpr}, []string{"v"}, true, child)
	if err != nil {
		t.Fatalf("NewProjectOp: %v", err)
	}

	proj.Configure(false)
	proj.Open()
	defer proj.Close()

	var got []int64
	for {
		tup, err := proj.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if tup == nil {
			break
		}
		got = append(got, tup.Fields[0].Int)
	}
	if len(got) != 2 {
		t.Fatalf("distinct project = %v, want 2 rows", got)
	}
}
