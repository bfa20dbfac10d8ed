package godb

import (
	"golang.org/x/exp/slices"
)

// AggOp names a supported aggregate function.
type AggOp int

const (
	AggCount AggOp = iota
	AggSum
	AggAvg
	AggMin
	AggMax
)

func (op AggOp) String() string {
	switch op {
	case AggCount:
		return "count"
	case AggSum:
		return "sum"
	case AggAvg:
		return "avg"
	case AggMin:
		return "min"
	case AggMax:
		return "max"
	default:
		return "?"
	}
}

// AggregateSpec describes one output column of an Aggregate: which input
// column to fold over (ignored, conventionally -1, for AggCount of *) and
// which function to apply.
type AggregateSpec struct {
	Op        AggOp
	FieldIdx  int
	OutName   string
	CountStar bool // true only for COUNT(*): every row counts, NULLs included
}

// aggState accumulates one AggregateSpec's running value for one group. It
// is NULL-aware: a Min/Max/Sum/Avg over a column of all-NULL values
// finalizes to NULL, and COUNT(col) (CountStar == false) does not count
// NULL rows at all.
type aggState struct {
	spec AggregateSpec

	count   int64 // rows merged (for CountStar, includes NULLs; for others, non-null only)
	sum     Field // running sum, Int or Decimal; IsNull() until first non-null merge
	sumSet  bool
	min     Field
	minSet  bool
	max     Field
	maxSet  bool
}

func newAggState(spec AggregateSpec) *aggState {
	return &aggState{spec: spec, sum: NullField(), min: NullField(), max: NullField()}
}

func (s *aggState) merge(f Field) error {
	if s.spec.CountStar {
		s.count++
		return nil
	}
	if f.IsNull() {
		return nil
	}
	s.count++

	switch s.spec.Op {
	case AggSum, AggAvg:
		if !s.sumSet {
			s.sum = f
			s.sumSet = true
			return nil
		}
		sum, err := s.sum.Add(f)
		if err != nil {
			return err
		}
		s.sum = sum
	case AggMin:
		if !s.minSet {
			s.min = f
			s.minSet = true
			return nil
		}
		lt, err := f.Compare(OpLessThan, s.min)
		if err != nil {
			return err
		}
		if lt {
			s.min = f
		}
	case AggMax:
		if !s.maxSet {
			s.max = f
			s.maxSet = true
			return nil
		}
		gt, err := f.Compare(OpGreaterThan, s.max)
		if err != nil {
			return err
		}
		if gt {
			s.max = f
		}
	}
	return nil
}

// finalize returns the output Field for this group: COUNT always returns a
// count (possibly 0); SUM/MIN/MAX/AVG return NULL if no non-null value was
// ever merged.
func (s *aggState) finalize() (Field, error) {
	switch s.spec.Op {
	case AggCount:
		return IntField(s.count), nil
	case AggSum:
		if !s.sumSet {
			return NullField(), nil
		}
		return s.sum, nil
	case AggMin:
		if !s.minSet {
			return NullField(), nil
		}
		return s.min, nil
	case AggMax:
		if !s.maxSet {
			return NullField(), nil
		}
		return s.max, nil
	case AggAvg:
		if !s.sumSet || s.count == 0 {
			return NullField(), nil
		}
		var total float64
		switch s.sum.Kind {
		case FieldKindInt:
			total = float64(s.sum.Int)
		case FieldKindDecimal:
			total = s.sum.Decimal.AsFloat64()
		default:
			return Field{}, newExecutionError("cannot average a %s field", s.sum.Kind)
		}
		avg := total / float64(s.count)
		return DecimalField(int64(avg*1000), 3), nil
	default:
		return Field{}, newExecutionError("unknown aggregate op %s", s.spec.Op)
	}
}

// Aggregate is a hash-grouped OperatorIterator: it fully drains its child
// in Open, bucketing rows by their group-by field values, then yields one
// output tuple per distinct group.
//
// If Configure(true) was used, Aggregate deliberately discards the output
// of the very first call sequence: Open computes every group as usual, but
// the first round of Next calls returns (nil, nil) immediately, as if the
// result set were empty. Only after an explicit Rewind does Next actually
// yield the computed groups. This mirrors a quirk of the engine this one
// descends from and is preserved rather than smoothed over: callers that
// configure for rewind and then forget to rewind before consuming see an
// empty aggregate, not a panic.
type Aggregate struct {
	child      OperatorIterator
	groupCols  []int
	specs      []AggregateSpec
	schema     *TableSchema

	willRewind bool
	opened     bool
	hasRewound bool
	results    []*Tuple
	pos        int
}

// NewAggregate builds an Aggregate over child, grouping by the (possibly
// empty) list of field indices in groupCols and computing one output
// column per spec in specs, in order, after the group-by columns.
func NewAggregate(child OperatorIterator, groupCols []int, specs []AggregateSpec) *Aggregate {
	cols := make([]ColumnSchema, 0, len(groupCols)+len(specs))
	childSchema := child.Schema()
	for _, idx := range groupCols {
		cols = append(cols, childSchema.Columns[idx])
	}
	for _, spec := range specs {
		kind := FieldKindInt
		if spec.Op != AggCount {
			if spec.FieldIdx >= 0 && spec.FieldIdx < len(childSchema.Columns) {
				kind = childSchema.Columns[spec.FieldIdx].Kind
			}
			if spec.Op == AggAvg {
				kind = FieldKindDecimal
			}
		}
		cols = append(cols, ColumnSchema{Name: spec.OutName, Kind: kind})
	}
	return &Aggregate{
		child:     child,
		groupCols: groupCols,
		specs:     specs,
		schema:    &TableSchema{Columns: cols},
	}
}

func (a *Aggregate) Configure(willRewind bool) error {
	a.willRewind = willRewind
	return a.child.Configure(false)
}

func groupKey(fields []Field) string {
	s := ""
	for _, f := range fields {
		s += f.Kind.String() + ":" + f.String() + "|"
	}
	return s
}

func (a *Aggregate) Open() error {
	if a.opened {
		fatalf("Aggregate.Open called twice without Close")
	}
	a.opened = true
	a.hasRewound = false
	a.pos = 0
	a.results = nil

	if err := a.child.Open(); err != nil {
		return err
	}
	defer a.child.Close()

	groupValues := make(map[string][]Field)
	groupStates := make(map[string][]*aggState)
	var groupOrder []string

	for {
		t, err := a.child.Next()
		if err != nil {
			return err
		}
		if t == nil {
			break
		}

		keyFields := make([]Field, len(a.groupCols))
		for i, idx := range a.groupCols {
			keyFields[i] = t.Fields[idx]
		}
		key := groupKey(keyFields)

		states, ok := groupStates[key]
		if !ok {
			states = make([]*aggState, len(a.specs))
			for i, spec := range a.specs {
				states[i] = newAggState(spec)
			}
			groupStates[key] = states
			groupValues[key] = keyFields
			groupOrder = append(groupOrder, key)
		}

		for i, spec := range a.specs {
			var val Field
			if spec.CountStar {
				val = NullField()
			} else {
				val = t.Fields[spec.FieldIdx]
			}
			if err := states[i].merge(val); err != nil {
				return err
			}
		}
	}

	slices.Sort(groupOrder)

	// Finalize every group now, at open time: an error such as averaging a
	// non-numeric column must surface from Open, not be deferred until the
	// caller happens to pull far enough through Next.
	a.results = make([]*Tuple, 0, len(groupOrder))
	for _, key := range groupOrder {
		keyFields := groupValues[key]
		states := groupStates[key]

		fields := make([]Field, 0, len(keyFields)+len(states))
		fields = append(fields, keyFields...)
		for _, st := range states {
			f, err := st.finalize()
			if err != nil {
				return err
			}
			fields = append(fields, f)
		}
		a.results = append(a.results, &Tuple{Desc: a.schema, Fields: fields})
	}

	return nil
}

func (a *Aggregate) Next() (*Tuple, error) {
	if !a.opened {
		fatalf("Aggregate.Next called before Open")
	}
	if a.willRewind && !a.hasRewound {
		return nil, nil
	}
	if a.pos >= len(a.results) {
		return nil, nil
	}
	t := a.results[a.pos]
	a.pos++
	return t, nil
}

func (a *Aggregate) Rewind() error {
	if !a.willRewind {
		fatalf("Aggregate.Rewind called without Configure(true)")
	}
	a.hasRewound = true
	a.pos = 0
	return nil
}

func (a *Aggregate) Close() error {
	a.opened = false
	a.results = nil
	return nil
}

func (a *Aggregate) Schema() *TableSchema {
	return a.schema
}
