// Package sqlshim is a thin, deliberately partial SQL front end for the
// gophersdb REPL. It recognizes enough of SELECT to drive the engine's
// scan/aggregate/join operators from a typed query, and nothing else: no
// INSERT/UPDATE/DELETE parsing, no subqueries, no joins beyond a single
// equality ON clause. Anything it doesn't recognize is returned as an
// error for the REPL to report, not guessed at.
package sqlshim

import (
	"fmt"

	"github.com/xwb1989/sqlparser"
)

// SelectQuery is the shim's parsed-and-narrowed view of a SELECT
// statement: enough structure for the caller to build an operator tree,
// no more.
type SelectQuery struct {
	Table        string
	Columns      []string // empty means "*"
	GroupBy      []string
	Join         *JoinClause
	AggregateFns []AggregateCall
}

// JoinClause describes a single equi-join: "... JOIN <Table> ON <LeftOn> = <RightOn>",
// where LeftOn and RightOn are bare column names (any table qualifier is dropped).
type JoinClause struct {
	Table   string
	LeftOn  string
	RightOn string
}

// AggregateCall is one SELECT-list aggregate function invocation, e.g.
// COUNT(*) or AVG(amount).
type AggregateCall struct {
	Fn       string // "count", "sum", "avg", "min", "max"
	Arg      string // column name, or "" for COUNT(*)
	CountAll bool
}

// Parse accepts a single SQL statement and narrows it to a SelectQuery.
// Statements other than SELECT, or SELECT statements using syntax this
// shim does not understand (subqueries, UNION, multiple joins, WHERE,
// HAVING, ORDER BY, LIMIT, DISTINCT), return an error rather than a
// best-effort partial result.
func Parse(sql string) (*SelectQuery, error) {
	stmt, err := sqlparser.Parse(sql)
	if err != nil {
		return nil, fmt.Errorf("sql syntax: %w", err)
	}

	sel, ok := stmt.(*sqlparser.Select)
	if !ok {
		return nil, fmt.Errorf("sqlshim only understands SELECT statements")
	}
	if len(sel.From) != 1 {
		return nil, fmt.Errorf("sqlshim only understands a single FROM table")
	}
	if sel.Where != nil || sel.Having != nil || len(sel.OrderBy) > 0 || sel.Limit != nil || sel.Distinct != "" {
		return nil, fmt.Errorf("sqlshim does not understand WHERE, HAVING, ORDER BY, LIMIT or DISTINCT")
	}

	q := &SelectQuery{}

	switch from := sel.From[0].(type) {
	case *sqlparser.AliasedTableExpr:
		tableName, ok := from.Expr.(sqlparser.TableName)
		if !ok {
			return nil, fmt.Errorf("sqlshim cannot parse this FROM clause")
		}
		q.Table = tableName.Name.String()
	case *sqlparser.JoinTableExpr:
		left, ok := from.LeftExpr.(*sqlparser.AliasedTableExpr)
		if !ok {
			return nil, fmt.Errorf("sqlshim only understands a simple table on the left of JOIN")
		}
		leftName, ok := left.Expr.(sqlparser.TableName)
		if !ok {
			return nil, fmt.Errorf("sqlshim cannot parse the left side of JOIN")
		}
		right, ok := from.RightExpr.(*sqlparser.AliasedTableExpr)
		if !ok {
			return nil, fmt.Errorf("sqlshim only understands a simple table on the right of JOIN")
		}
		rightName, ok := right.Expr.(sqlparser.TableName)
		if !ok {
			return nil, fmt.Errorf("sqlshim cannot parse the right side of JOIN")
		}
		cond, ok := from.Condition.On.(*sqlparser.ComparisonExpr)
		if !ok || cond.Operator != sqlparser.EqualStr {
			return nil, fmt.Errorf("sqlshim only understands a single equality ON clause")
		}
		leftCol, err := colExprName(cond.Left)
		if err != nil {
			return nil, err
		}
		rightCol, err := colExprName(cond.Right)
		if err != nil {
			return nil, err
		}
		q.Table = leftName.Name.String()
		q.Join = &JoinClause{Table: rightName.Name.String(), LeftOn: leftCol, RightOn: rightCol}
	default:
		return nil, fmt.Errorf("sqlshim cannot parse this FROM clause")
	}

	for _, expr := range sel.SelectExprs {
		aliased, ok := expr.(*sqlparser.AliasedExpr)
		if !ok {
			return nil, fmt.Errorf("sqlshim cannot parse this select list")
		}
		switch e := aliased.Expr.(type) {
		case *sqlparser.ColName:
			q.Columns = append(q.Columns, e.Name.String())
		case *sqlparser.FuncExpr:
			call, err := parseAggregateCall(e)
			if err != nil {
				return nil, err
			}
			q.AggregateFns = append(q.AggregateFns, *call)
		case *sqlparser.StarExpr:
			// leave Columns empty: "*"
		default:
			return nil, fmt.Errorf("sqlshim cannot parse this select expression")
		}
	}

	for _, g := range sel.GroupBy {
		col, err := colExprName(g)
		if err != nil {
			return nil, err
		}
		q.GroupBy = append(q.GroupBy, col)
	}

	return q, nil
}

func parseAggregateCall(f *sqlparser.FuncExpr) (*AggregateCall, error) {
	fn := f.Name.Lowered()
	switch fn {
	case "count", "sum", "avg", "min", "max":
	default:
		return nil, fmt.Errorf("sqlshim does not understand function %q", fn)
	}

	if len(f.Exprs) != 1 {
		return nil, fmt.Errorf("sqlshim only understands single-argument aggregates")
	}
	if _, ok := f.Exprs[0].(*sqlparser.StarExpr); ok {
		if fn != "count" {
			return nil, fmt.Errorf("only COUNT(*) is understood, not %s(*)", fn)
		}
		return &AggregateCall{Fn: fn, CountAll: true}, nil
	}
	aliased, ok := f.Exprs[0].(*sqlparser.AliasedExpr)
	if !ok {
		return nil, fmt.Errorf("sqlshim cannot parse this aggregate argument")
	}
	col, err := colExprName(aliased.Expr)
	if err != nil {
		return nil, err
	}
	return &AggregateCall{Fn: fn, Arg: col}, nil
}

func colExprName(e sqlparser.Expr) (string, error) {
	col, ok := e.(*sqlparser.ColName)
	if !ok {
		return "", fmt.Errorf("sqlshim only understands plain column references here")
	}
	return col.Name.String(), nil
}
