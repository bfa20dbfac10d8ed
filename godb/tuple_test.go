package godb

import "testing"

func testSchema() *TableSchema {
	return NewTableSchema([]string{"id", "name"}, []FieldKind{FieldKindInt, FieldKindString})
}

func TestTupleEncodeDecodeRoundTrip(t *testing.T) {
	desc := testSchema()
	tup, err := NewTuple(desc, []Field{IntField(42), StringField("hello")})
	if err != nil {
		t.Fatalf("NewTuple: %v", err)
	}

	data, err := EncodeTuple(tup)
	if err != nil {
		t.Fatalf("EncodeTuple: %v", err)
	}
	got, err := DecodeTuple(data, desc)
	if err != nil {
		t.Fatalf("DecodeTuple: %v", err)
	}
	if !got.equals(tup) {
		t.Fatalf("DecodeTuple(EncodeTuple(t)) = %v, want %v", got, tup)
	}
}

func TestTupleEncodeDecodeWithNull(t *testing.T) {
	desc := testSchema()
	tup, _ := NewTuple(desc, []Field{IntField(1), NullField()})

	data, err := EncodeTuple(tup)
	if err != nil {
		t.Fatalf("EncodeTuple: %v", err)
	}
	got, err := DecodeTuple(data, desc)
	if err != nil {
		t.Fatalf("DecodeTuple: %v", err)
	}
	if !got.Fields[1].IsNull() {
		t.Fatalf("decoded field 1 = %v, want NULL", got.Fields[1])
	}
}

func TestTupleProject(t *testing.T) {
	desc := testSchema()
	tup, _ := NewTuple(desc, []Field{IntField(7), StringField("x")})

	projected, err := tup.project([]string{"name"})
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if len(projected.Fields) != 1 || projected.Fields[0].Str != "x" {
		t.Fatalf("project([name]) = %v, want [x]", projected.Fields)
	}
}

func TestJoinTuplesConcatenatesSchemaAndFields(t *testing.T) {
	leftDesc := NewTableSchema([]string{"a"}, []FieldKind{FieldKindInt})
	rightDesc := NewTableSchema([]string{"b"}, []FieldKind{FieldKindString})
	left, _ := NewTuple(leftDesc, []Field{IntField(1)})
	right, _ := NewTuple(rightDesc, []Field{StringField("y")})

	joined := joinTuples(left, right)
	if len(joined.Fields) != 2 {
		t.Fatalf("joinTuples produced %d fields, want 2", len(joined.Fields))
	}
	if joined.Fields[0].Int != 1 || joined.Fields[1].Str != "y" {
		t.Fatalf("joinTuples fields = %v, want [1 y]", joined.Fields)
	}
}
