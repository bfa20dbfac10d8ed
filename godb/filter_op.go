package godb

// Filter is an OperatorIterator that passes through only the child tuples
// satisfying left op right, where left and right are evaluated per-tuple
// (so one side is typically a FieldExpr and the other a ConstExpr, but
// both sides being field references is equally valid for a theta-style
// row filter).
type Filter struct {
	op    BoolOp
	left  Expr
	right Expr
	child OperatorIterator

	willRewind bool
	opened     bool
}

// NewFilter builds a Filter over child.
func NewFilter(left Expr, op BoolOp, right Expr, child OperatorIterator) *Filter {
	return &Filter{op: op, left: left, right: right, child: child}
}

func (f *Filter) Configure(willRewind bool) error {
	f.willRewind = willRewind
	return f.child.Configure(willRewind)
}

func (f *Filter) Open() error {
	if f.opened {
		fatalf("Filter.Open called twice without Close")
	}
	f.opened = true
	return f.child.Open()
}

func (f *Filter) Next() (*Tuple, error) {
	if !f.opened {
		fatalf("Filter.Next called before Open")
	}
	for {
		t, err := f.child.Next()
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, nil
		}

		leftVal, err := f.left.EvalExpr(t)
		if err != nil {
			return nil, err
		}
		rightVal, err := f.right.EvalExpr(t)
		if err != nil {
			return nil, err
		}
		match, err := leftVal.Compare(f.op, rightVal)
		if err != nil {
			return nil, err
		}
		if match {
			return t, nil
		}
	}
}

func (f *Filter) Rewind() error {
	if !f.willRewind {
		fatalf("Filter.Rewind called without Configure(true)")
	}
	return f.child.Rewind()
}

func (f *Filter) Close() error {
	f.opened = false
	return f.child.Close()
}

func (f *Filter) Schema() *TableSchema {
	return f.child.Schema()
}
