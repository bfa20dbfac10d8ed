// Command gophersdb is an interactive REPL over the gophersdb engine: a
// tiny catalog of named tables backed by the engine's StorageManager, plus
// enough SQL (via sqlshim) to scan, filter by group, aggregate, and join
// them.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"

	godb "github.com/gopherdb/engine"
	"gopherdb/cmd/gophersdb/sqlshim"
)

func main() {
	dataDir := flag.String("data", "", "directory to store table files in (empty = scratch temp dir)")
	verbose := flag.Bool("v", false, "enable verbose engine logging")
	flag.Parse()

	logLevel := zerolog.Disabled
	if *verbose {
		logLevel = zerolog.DebugLevel
	}
	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(logLevel)

	sm, err := godb.NewStorageManager(*dataDir, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gophersdb: %v\n", err)
		os.Exit(1)
	}
	defer sm.Shutdown()

	repl := &repl{sm: sm, catalog: newCatalog(), log: log}
	repl.run()
}

type table struct {
	cid    godb.ContainerId
	schema *godb.TableSchema
}

type catalog struct {
	tables map[string]*table
}

func newCatalog() *catalog {
	return &catalog{tables: make(map[string]*table)}
}

type repl struct {
	sm      *godb.StorageManager
	catalog *catalog
	log     zerolog.Logger
}

func (r *repl) run() {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "gophersdb> ",
		HistoryFile:     "",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "gophersdb: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := r.dispatch(line); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

func (r *repl) dispatch(line string) error {
	switch {
	case line == ".tables":
		return r.listTables()
	case strings.HasPrefix(strings.ToLower(line), "create table"):
		return r.createTable(line)
	case strings.HasPrefix(strings.ToLower(line), "insert into"):
		return r.insertInto(line)
	default:
		return r.runSelect(line)
	}
}

func (r *repl) listTables() error {
	for name, t := range r.catalog.tables {
		fmt.Printf("%s (container %d)\n", name, t.cid)
	}
	return nil
}

// createTable accepts: create table NAME (col1:int, col2:string, ...)
func (r *repl) createTable(line string) error {
	open := strings.Index(line, "(")
	close := strings.LastIndex(line, ")")
	if open < 0 || close < 0 || close < open {
		return fmt.Errorf("usage: create table NAME (col:kind, ...)")
	}
	head := strings.Fields(line[:open])
	if len(head) != 3 {
		return fmt.Errorf("usage: create table NAME (col:kind, ...)")
	}
	name := head[2]

	var names []string
	var kinds []godb.FieldKind
	for _, part := range strings.Split(line[open+1:close], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		colKind := strings.SplitN(part, ":", 2)
		if len(colKind) != 2 {
			return fmt.Errorf("bad column spec %q, want name:kind", part)
		}
		kind, err := parseKind(strings.TrimSpace(colKind[1]))
		if err != nil {
			return err
		}
		names = append(names, strings.TrimSpace(colKind[0]))
		kinds = append(kinds, kind)
	}

	cid, err := r.sm.CreateContainer()
	if err != nil {
		return err
	}
	r.catalog.tables[name] = &table{cid: cid, schema: godb.NewTableSchema(names, kinds)}
	fmt.Printf("created %s\n", name)
	return nil
}

func parseKind(s string) (godb.FieldKind, error) {
	switch strings.ToLower(s) {
	case "int":
		return godb.FieldKindInt, nil
	case "string":
		return godb.FieldKindString, nil
	case "decimal":
		return godb.FieldKindDecimal, nil
	default:
		return 0, fmt.Errorf("unknown column kind %q (want int, string, or decimal)", s)
	}
}

// insertInto accepts: insert into NAME values (v1, v2, ...)
func (r *repl) insertInto(line string) error {
	fields := strings.Fields(line)
	if len(fields) < 4 || strings.ToLower(fields[3]) != "values" {
		return fmt.Errorf("usage: insert into NAME values (v1, v2, ...)")
	}
	name := fields[2]
	t, ok := r.catalog.tables[name]
	if !ok {
		return fmt.Errorf("no such table %q", name)
	}

	open := strings.Index(line, "(")
	close := strings.LastIndex(line, ")")
	if open < 0 || close < 0 {
		return fmt.Errorf("usage: insert into NAME values (v1, v2, ...)")
	}

	parts := strings.Split(line[open+1:close], ",")
	if len(parts) != len(t.schema.Columns) {
		return fmt.Errorf("table %s has %d columns, got %d values", name, len(t.schema.Columns), len(parts))
	}

	values := make([]godb.Field, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		values[i] = parseLiteral(p, t.schema.Columns[i].Kind)
	}

	tup, err := godb.NewTuple(t.schema, values)
	if err != nil {
		return err
	}
	data, err := godb.EncodeTuple(tup)
	if err != nil {
		return err
	}
	if _, err := r.sm.InsertValue(t.cid, data); err != nil {
		return err
	}
	fmt.Println("inserted 1 row")
	return nil
}

func parseLiteral(raw string, kind godb.FieldKind) godb.Field {
	if strings.EqualFold(raw, "null") {
		return godb.NullField()
	}
	switch kind {
	case godb.FieldKindInt:
		v, _ := strconv.ParseInt(raw, 10, 64)
		return godb.IntField(v)
	case godb.FieldKindString:
		return godb.StringField(strings.Trim(raw, "'\""))
	case godb.FieldKindDecimal:
		mantissa, scale := parseDecimalLiteral(raw)
		return godb.DecimalField(mantissa, scale)
	default:
		return godb.NullField()
	}
}

func parseDecimalLiteral(raw string) (int64, uint16) {
	dot := strings.Index(raw, ".")
	if dot < 0 {
		v, _ := strconv.ParseInt(raw, 10, 64)
		return v, 0
	}
	scale := uint16(len(raw) - dot - 1)
	digits := raw[:dot] + raw[dot+1:]
	v, _ := strconv.ParseInt(digits, 10, 64)
	return v, scale
}

// runSelect handles a SQL SELECT via sqlshim: a scan, optionally group-by
// aggregated, optionally joined to a second table.
func (r *repl) runSelect(sql string) error {
	q, err := sqlshim.Parse(sql)
	if err != nil {
		return err
	}

	leftTable, ok := r.catalog.tables[q.Table]
	if !ok {
		return fmt.Errorf("no such table %q", q.Table)
	}

	var plan godb.OperatorIterator = godb.NewHeapFileScan(r.sm, leftTable.cid, leftTable.schema)

	if q.Join != nil {
		rightTable, ok := r.catalog.tables[q.Join.Table]
		if !ok {
			return fmt.Errorf("no such table %q", q.Join.Table)
		}
		leftExpr, err := godb.NewFieldExpr(leftTable.schema, q.Join.LeftOn)
		if err != nil {
			return err
		}
		rightExpr, err := godb.NewFieldExpr(rightTable.schema, q.Join.RightOn)
		if err != nil {
			return err
		}
		right := godb.NewHeapFileScan(r.sm, rightTable.cid, rightTable.schema)
		plan = godb.NewNestedLoopJoin(plan, right, leftExpr, rightExpr, godb.OpEquals)
	}

	if len(q.AggregateFns) > 0 || len(q.GroupBy) > 0 {
		schema := plan.Schema()
		groupIdx := make([]int, len(q.GroupBy))
		for i, name := range q.GroupBy {
			groupIdx[i] = schema.IndexOf(name)
		}
		specs := make([]godb.AggregateSpec, len(q.AggregateFns))
		for i, call := range q.AggregateFns {
			specs[i] = aggregateSpecFromCall(call, schema)
		}
		plan = godb.NewAggregate(plan, groupIdx, specs)
	}

	if err := plan.Configure(false); err != nil {
		return err
	}
	if err := plan.Open(); err != nil {
		return err
	}
	defer plan.Close()

	printHeader(plan.Schema())
	for {
		tup, err := plan.Next()
		if err != nil {
			return err
		}
		if tup == nil {
			break
		}
		fmt.Println(tup.String())
	}
	return nil
}

func aggregateSpecFromCall(call sqlshim.AggregateCall, schema *godb.TableSchema) godb.AggregateSpec {
	var op godb.AggOp
	switch call.Fn {
	case "count":
		op = godb.AggCount
	case "sum":
		op = godb.AggSum
	case "avg":
		op = godb.AggAvg
	case "min":
		op = godb.AggMin
	case "max":
		op = godb.AggMax
	}
	spec := godb.AggregateSpec{Op: op, OutName: call.Fn, CountStar: call.CountAll}
	if !call.CountAll {
		spec.FieldIdx = schema.IndexOf(call.Arg)
		spec.OutName = call.Fn + "(" + call.Arg + ")"
	} else {
		spec.OutName = "count(*)"
	}
	return spec
}

func printHeader(schema *godb.TableSchema) {
	names := make([]string, len(schema.Columns))
	for i, c := range schema.Columns {
		names[i] = c.Name
	}
	fmt.Println(strings.Join(names, ", "))
}
