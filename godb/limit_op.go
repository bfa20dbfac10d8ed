package godb

// LimitOp caps its child's output at the first lim tuples, where lim is
// evaluated against a nil tuple on every Next call — so it must be a
// ConstExpr (or any Expr that doesn't need to read row data).
type LimitOp struct {
	child OperatorIterator
	limit Expr

	willRewind bool
	opened     bool
	count      int
}

// NewLimitOp builds a LimitOp over child.
func NewLimitOp(lim Expr, child OperatorIterator) *LimitOp {
	return &LimitOp{child: child, limit: lim}
}

func (l *LimitOp) Configure(willRewind bool) error {
	l.willRewind = willRewind
	return l.child.Configure(willRewind)
}

func (l *LimitOp) Open() error {
	if l.opened {
		fatalf("LimitOp.Open called twice without Close")
	}
	l.opened = true
	l.count = 0
	return l.child.Open()
}

func (l *LimitOp) Next() (*Tuple, error) {
	if !l.opened {
		fatalf("LimitOp.Next called before Open")
	}
	limitField, err := l.limit.EvalExpr(nil)
	if err != nil {
		return nil, err
	}
	if int64(l.count) >= limitField.Int {
		return nil, nil
	}
	t, err := l.child.Next()
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, nil
	}
	l.count++
	return t, nil
}

func (l *LimitOp) Rewind() error {
	if !l.willRewind {
		fatalf("LimitOp.Rewind called without Configure(true)")
	}
	l.count = 0
	return l.child.Rewind()
}

func (l *LimitOp) Close() error {
	l.opened = false
	return l.child.Close()
}

func (l *LimitOp) Schema() *TableSchema {
	return l.child.Schema()
}
