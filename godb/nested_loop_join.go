package godb

// NestedLoopJoin is a true nested-loop equi/theta join: for every tuple
// produced by the outer (left) child, the inner (right) child is rewound
// and scanned in full, emitting a joined tuple for every inner row that
// satisfies op(leftExpr(outer), rightExpr(inner)).
//
// The right child is always configured with willRewind=true, since it is
// rewound once per outer tuple; the left child is only configured to
// rewind if this join itself is.
type NestedLoopJoin struct {
	left, right OperatorIterator
	leftExpr    Expr
	rightExpr   Expr
	op          BoolOp
	schema      *TableSchema

	opened     bool
	willRewind bool

	filter *joinBloomFilter

	outer       *Tuple
	outerLoaded bool
}

// NewNestedLoopJoin builds a join of leftExpr(outer tuple) op
// rightExpr(inner tuple). leftExpr and rightExpr are evaluated against the
// left and right children's own rows respectively, so either side can be an
// arbitrary expression over its own tuple (e.g. a sum of two columns), not
// just a bare column reference.
func NewNestedLoopJoin(left, right OperatorIterator, leftExpr, rightExpr Expr, op BoolOp) *NestedLoopJoin {
	return &NestedLoopJoin{
		left:      left,
		right:     right,
		leftExpr:  leftExpr,
		rightExpr: rightExpr,
		op:        op,
		schema:    left.Schema().join(right.Schema()),
	}
}

func (j *NestedLoopJoin) Configure(willRewind bool) error {
	j.willRewind = willRewind
	if err := j.left.Configure(willRewind); err != nil {
		return err
	}
	return j.right.Configure(true)
}

func (j *NestedLoopJoin) Open() error {
	if j.opened {
		fatalf("NestedLoopJoin.Open called twice without Close")
	}
	j.opened = true

	if err := j.left.Open(); err != nil {
		return err
	}
	if err := j.right.Open(); err != nil {
		return err
	}

	// The bloom pre-filter only pays off for equality joins: a range
	// comparison can't be ruled out by membership testing a single value.
	if j.op == OpEquals {
		j.filter = newJoinBloomFilter(1024)
		for {
			t, err := j.right.Next()
			if err != nil {
				return err
			}
			if t == nil {
				break
			}
			key, err := j.rightExpr.EvalExpr(t)
			if err != nil {
				return err
			}
			j.filter.add(key)
		}
		if err := j.right.Rewind(); err != nil {
			return err
		}
	}

	j.outerLoaded = false
	return nil
}

// Next advances through outer tuples, for each one rewinding and scanning
// the inner child for matches, resuming mid-inner-scan across calls so
// that an outer tuple with several inner matches yields them one at a
// time rather than all at once.
func (j *NestedLoopJoin) Next() (*Tuple, error) {
	if !j.opened {
		fatalf("NestedLoopJoin.Next called before Open")
	}

	for {
		if !j.outerLoaded {
			t, err := j.left.Next()
			if err != nil {
				return nil, err
			}
			if t == nil {
				return nil, nil
			}
			j.outer = t
			j.outerLoaded = true

			if j.filter != nil {
				key, err := j.leftExpr.EvalExpr(t)
				if err != nil {
					return nil, err
				}
				if !j.filter.mightContain(key) {
					j.outerLoaded = false
					continue
				}
			}
			if err := j.right.Rewind(); err != nil {
				return nil, err
			}
		}

		inner, err := j.right.Next()
		if err != nil {
			return nil, err
		}
		if inner == nil {
			j.outerLoaded = false
			continue
		}

		leftVal, err := j.leftExpr.EvalExpr(j.outer)
		if err != nil {
			return nil, err
		}
		rightVal, err := j.rightExpr.EvalExpr(inner)
		if err != nil {
			return nil, err
		}
		match, err := leftVal.Compare(j.op, rightVal)
		if err != nil {
			return nil, err
		}
		if match {
			return joinTuples(j.outer, inner), nil
		}
	}
}

func (j *NestedLoopJoin) Rewind() error {
	if !j.willRewind {
		fatalf("NestedLoopJoin.Rewind called without Configure(true)")
	}
	if err := j.left.Rewind(); err != nil {
		return err
	}
	j.outerLoaded = false
	return nil
}

func (j *NestedLoopJoin) Close() error {
	j.opened = false
	if err := j.left.Close(); err != nil {
		return err
	}
	return j.right.Close()
}

func (j *NestedLoopJoin) Schema() *TableSchema {
	return j.schema
}
