package godb

// Expr evaluates to a Field given an input tuple. This is a minimal
// stand-in for a full bytecode expression compiler: just enough to drive
// Filter and the projection list without requiring a separate parser.
type Expr interface {
	EvalExpr(t *Tuple) (Field, error)

	// ExprType reports the FieldKind this expression produces, used to
	// build a projection's output schema without evaluating any tuple.
	ExprType() FieldKind
}

// FieldExpr reads a single column straight out of the input tuple by
// position.
type FieldExpr struct {
	Idx  int
	Kind FieldKind
}

func (e *FieldExpr) EvalExpr(t *Tuple) (Field, error) {
	if e.Idx < 0 || e.Idx >= len(t.Fields) {
		return Field{}, newValidationError("field index %d out of range for tuple of %d fields", e.Idx, len(t.Fields))
	}
	return t.Fields[e.Idx], nil
}

func (e *FieldExpr) ExprType() FieldKind {
	return e.Kind
}

// NewFieldExpr builds a FieldExpr reading column name out of schema.
func NewFieldExpr(schema *TableSchema, name string) (*FieldExpr, error) {
	idx := schema.IndexOf(name)
	if idx < 0 {
		return nil, newValidationError("no such column %q", name)
	}
	return &FieldExpr{Idx: idx, Kind: schema.Columns[idx].Kind}, nil
}

// ConstExpr always evaluates to the same literal Field, regardless of the
// input tuple.
type ConstExpr struct {
	Value Field
}

func (e *ConstExpr) EvalExpr(t *Tuple) (Field, error) {
	return e.Value, nil
}

func (e *ConstExpr) ExprType() FieldKind {
	return e.Value.Kind
}

// AddExpr evaluates Left and Right against the same input tuple and sums
// them, following Field.Add's NULL-absorbing, Int/Decimal-widening rules.
type AddExpr struct {
	Left, Right Expr
}

func (e *AddExpr) EvalExpr(t *Tuple) (Field, error) {
	l, err := e.Left.EvalExpr(t)
	if err != nil {
		return Field{}, err
	}
	r, err := e.Right.EvalExpr(t)
	if err != nil {
		return Field{}, err
	}
	return l.Add(r)
}

func (e *AddExpr) ExprType() FieldKind {
	if e.Left.ExprType() == FieldKindDecimal || e.Right.ExprType() == FieldKindDecimal {
		return FieldKindDecimal
	}
	return e.Left.ExprType()
}
