package godb

// Project is an OperatorIterator that evaluates a list of expressions per
// child tuple and emits the results under a new schema. With distinct set,
// duplicate output rows (by field-by-field equality) are suppressed.
type Project struct {
	selectFields []Expr
	outputNames  []string
	distinct     bool
	child        OperatorIterator
	schema       *TableSchema

	willRewind bool
	opened     bool
	seen       map[string]struct{}
}

// NewProjectOp builds a Project. selectFields and outputNames must be the
// same length.
func NewProjectOp(selectFields []Expr, outputNames []string, distinct bool, child OperatorIterator) (*Project, error) {
	if len(selectFields) != len(outputNames) {
		return nil, newValidationError("selectFields and outputNames must be the same length")
	}
	cols := make([]ColumnSchema, len(selectFields))
	for i, e := range selectFields {
		cols[i] = ColumnSchema{Name: outputNames[i], Kind: e.ExprType()}
	}
	return &Project{
		selectFields: selectFields,
		outputNames:  outputNames,
		distinct:     distinct,
		child:        child,
		schema:       &TableSchema{Columns: cols},
	}, nil
}

func (p *Project) Configure(willRewind bool) error {
	p.willRewind = willRewind
	return p.child.Configure(willRewind)
}

func (p *Project) Open() error {
	if p.opened {
		fatalf("Project.Open called twice without Close")
	}
	p.opened = true
	if p.distinct {
		p.seen = make(map[string]struct{})
	}
	return p.child.Open()
}

func (p *Project) Next() (*Tuple, error) {
	if !p.opened {
		fatalf("Project.Next called before Open")
	}
	for {
		t, err := p.child.Next()
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, nil
		}

		fields := make([]Field, len(p.selectFields))
		for i, e := range p.selectFields {
			f, err := e.EvalExpr(t)
			if err != nil {
				return nil, err
			}
			fields[i] = f
		}
		out := &Tuple{Desc: p.schema, Fields: fields}

		if p.distinct {
			key := groupKey(fields)
			if _, ok := p.seen[key]; ok {
				continue
			}
			p.seen[key] = struct{}{}
		}

		return out, nil
	}
}

func (p *Project) Rewind() error {
	if !p.willRewind {
		fatalf("Project.Rewind called without Configure(true)")
	}
	if p.distinct {
		p.seen = make(map[string]struct{})
	}
	return p.child.Rewind()
}

func (p *Project) Close() error {
	p.opened = false
	return p.child.Close()
}

func (p *Project) Schema() *TableSchema {
	return p.schema
}
