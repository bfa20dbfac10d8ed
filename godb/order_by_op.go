package godb

import (
	"sort"
)

// OrderBy is a blocking OperatorIterator: Open drains the child entirely
// into memory, sorts it by the given expressions (each with its own
// ascending/descending direction), and Next then replays the sorted
// slice. It always supports Rewind regardless of Configure, since the
// sorted result is already fully materialized.
type OrderBy struct {
	orderBy   []Expr
	ascending []bool
	child     OperatorIterator

	opened bool
	sorted []*Tuple
	pos    int
}

// NewOrderBy builds an OrderBy over child. ascending must be the same
// length as orderByFields; ascending[i] selects ascending (true) or
// descending (false) order for orderByFields[i], with ties broken by the
// next expression in the list.
func NewOrderBy(orderByFields []Expr, child OperatorIterator, ascending []bool) (*OrderBy, error) {
	if len(orderByFields) != len(ascending) {
		return nil, newValidationError("orderByFields and ascending must be the same length")
	}
	return &OrderBy{orderBy: orderByFields, ascending: ascending, child: child}, nil
}

func (o *OrderBy) Configure(willRewind bool) error {
	return o.child.Configure(false)
}

func (o *OrderBy) Open() error {
	if o.opened {
		fatalf("OrderBy.Open called twice without Close")
	}
	o.opened = true

	if err := o.child.Open(); err != nil {
		return err
	}
	defer o.child.Close()

	o.sorted = o.sorted[:0]
	for {
		t, err := o.child.Next()
		if err != nil {
			return err
		}
		if t == nil {
			break
		}
		o.sorted = append(o.sorted, t)
	}

	sort.Sort(sortTuples{orderBy: o.orderBy, ascending: o.ascending, all: o.sorted})
	o.pos = 0
	return nil
}

func (o *OrderBy) Next() (*Tuple, error) {
	if !o.opened {
		fatalf("OrderBy.Next called before Open")
	}
	if o.pos >= len(o.sorted) {
		return nil, nil
	}
	t := o.sorted[o.pos]
	o.pos++
	return t, nil
}

func (o *OrderBy) Rewind() error {
	o.pos = 0
	return nil
}

func (o *OrderBy) Close() error {
	o.opened = false
	return nil
}

func (o *OrderBy) Schema() *TableSchema {
	return o.child.Schema()
}

type sortTuples struct {
	orderBy   []Expr
	ascending []bool
	all       []*Tuple
}

func (s sortTuples) Less(a, b int) bool {
	tupleA := s.all[a]
	tupleB := s.all[b]

	for i, expr := range s.orderBy {
		valA, _ := expr.EvalExpr(tupleA)
		valB, _ := expr.EvalExpr(tupleB)

		eq, _ := valA.Compare(OpEquals, valB)
		if eq {
			continue
		}

		lt, _ := valA.Compare(OpLessThan, valB)
		if s.ascending[i] {
			return lt
		}
		return !lt
	}
	return false
}

func (s sortTuples) Swap(a, b int) {
	s.all[a], s.all[b] = s.all[b], s.all[a]
}

func (s sortTuples) Len() int {
	return len(s.all)
}
