package godb

// This file defines the tuple type: TableSchema (a tuple's type, i.e. its
// column names and kinds) and Tuple itself, plus the on-disk record
// encoding HeapFile/StorageManager actually store.

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// ColumnSchema names and types a single column.
type ColumnSchema struct {
	Name string
	Kind FieldKind
}

// TableSchema is a tuple's type: an ordered list of columns. Two schemas
// are interchangeable for join/project purposes only if their column
// kinds line up positionally; names are metadata for display, not part of
// the comparison HeapPage or Field care about.
type TableSchema struct {
	Columns []ColumnSchema
}

// NewTableSchema builds a schema from parallel name/kind slices.
func NewTableSchema(names []string, kinds []FieldKind) *TableSchema {
	cols := make([]ColumnSchema, len(names))
	for i := range names {
		cols[i] = ColumnSchema{Name: names[i], Kind: kinds[i]}
	}
	return &TableSchema{Columns: cols}
}

func (d *TableSchema) equals(other *TableSchema) bool {
	if len(d.Columns) != len(other.Columns) {
		return false
	}
	for i := range d.Columns {
		if d.Columns[i].Kind != other.Columns[i].Kind {
			return false
		}
	}
	return true
}

// IndexOf returns the position of the first column named name, or -1.
func (d *TableSchema) IndexOf(name string) int {
	for i, c := range d.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// join returns a schema that is the concatenation of d and other's
// columns, used to describe the output of a NestedLoopJoin.
func (d *TableSchema) join(other *TableSchema) *TableSchema {
	cols := make([]ColumnSchema, 0, len(d.Columns)+len(other.Columns))
	cols = append(cols, d.Columns...)
	cols = append(cols, other.Columns...)
	return &TableSchema{Columns: cols}
}

// Tuple is a single row: a fixed-schema slice of Fields, plus the ValueId
// it was last read from or stored at (zero ValueId if never persisted).
type Tuple struct {
	Desc   *TableSchema
	Fields []Field
	Rid    ValueId
}

// NewTuple builds a Tuple, validating that fields matches desc's arity.
func NewTuple(desc *TableSchema, fields []Field) (*Tuple, error) {
	if len(fields) != len(desc.Columns) {
		return nil, newValidationError("tuple has %d fields, schema expects %d", len(fields), len(desc.Columns))
	}
	return &Tuple{Desc: desc, Fields: fields}, nil
}

func (t *Tuple) equals(other *Tuple) bool {
	if !t.Desc.equals(other.Desc) {
		return false
	}
	if len(t.Fields) != len(other.Fields) {
		return false
	}
	for i := range t.Fields {
		eq, err := t.Fields[i].Compare(OpEquals, other.Fields[i])
		if err != nil || !eq {
			if t.Fields[i].IsNull() && other.Fields[i].IsNull() {
				continue
			}
			return false
		}
	}
	return true
}

// project returns a new tuple retaining only the named columns, in the
// order requested.
func (t *Tuple) project(names []string) (*Tuple, error) {
	cols := make([]ColumnSchema, len(names))
	fields := make([]Field, len(names))
	for i, name := range names {
		idx := t.Desc.IndexOf(name)
		if idx < 0 {
			return nil, newValidationError("no such column %q", name)
		}
		cols[i] = t.Desc.Columns[idx]
		fields[i] = t.Fields[idx]
	}
	return &Tuple{Desc: &TableSchema{Columns: cols}, Fields: fields}, nil
}

// joinTuples concatenates two tuples' fields and schemas, for use by
// NestedLoopJoin output.
func joinTuples(left, right *Tuple) *Tuple {
	fields := make([]Field, 0, len(left.Fields)+len(right.Fields))
	fields = append(fields, left.Fields...)
	fields = append(fields, right.Fields...)
	return &Tuple{Desc: left.Desc.join(right.Desc), Fields: fields}
}

func (t *Tuple) String() string {
	var b bytes.Buffer
	for i, f := range t.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.String())
	}
	return b.String()
}

// field kind wire tags: independent of FieldKind's own int values so the
// on-disk format doesn't shift if FieldKind gains members.
const (
	wireTagNull    byte = 0
	wireTagInt     byte = 1
	wireTagDecimal byte = 2
	wireTagString  byte = 3
)

// writeFieldTo encodes a single field: a 1-byte kind tag followed by its
// payload, with no payload at all for NULL.
func writeFieldTo(w io.Writer, f Field) error {
	switch f.Kind {
	case FieldKindNull:
		_, err := w.Write([]byte{wireTagNull})
		return err
	case FieldKindInt:
		if _, err := w.Write([]byte{wireTagInt}); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, f.Int)
	case FieldKindDecimal:
		if _, err := w.Write([]byte{wireTagDecimal}); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, f.Decimal.Mantissa); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, f.Decimal.Scale)
	case FieldKindString:
		if _, err := w.Write([]byte{wireTagString}); err != nil {
			return err
		}
		strBytes := []byte(f.Str)
		if err := binary.Write(w, binary.LittleEndian, uint16(len(strBytes))); err != nil {
			return err
		}
		_, err := w.Write(strBytes)
		return err
	default:
		return newExecutionError("cannot serialize field of kind %s", f.Kind)
	}
}

func readFieldFrom(r io.Reader) (Field, error) {
	var tag [1]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		return Field{}, err
	}
	switch tag[0] {
	case wireTagNull:
		return NullField(), nil
	case wireTagInt:
		var v int64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return Field{}, err
		}
		return IntField(v), nil
	case wireTagDecimal:
		var mantissa int64
		var scale uint16
		if err := binary.Read(r, binary.LittleEndian, &mantissa); err != nil {
			return Field{}, err
		}
		if err := binary.Read(r, binary.LittleEndian, &scale); err != nil {
			return Field{}, err
		}
		return DecimalField(mantissa, scale), nil
	case wireTagString:
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return Field{}, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return Field{}, err
		}
		return StringField(string(buf)), nil
	default:
		return Field{}, newValidationError("unknown field wire tag %d", tag[0])
	}
}

// WriteTupleTo serializes t's fields, in schema order, to w. The schema
// itself is not written: callers already know it from the container.
func WriteTupleTo(w io.Writer, t *Tuple) error {
	for _, f := range t.Fields {
		if err := writeFieldTo(w, f); err != nil {
			return err
		}
	}
	return nil
}

// ReadTupleFrom decodes a tuple written by WriteTupleTo, given the schema
// it was encoded against.
func ReadTupleFrom(r io.Reader, desc *TableSchema) (*Tuple, error) {
	fields := make([]Field, len(desc.Columns))
	for i := range desc.Columns {
		f, err := readFieldFrom(r)
		if err != nil {
			return nil, fmt.Errorf("reading field %d: %w", i, err)
		}
		fields[i] = f
	}
	return &Tuple{Desc: desc, Fields: fields}, nil
}

// EncodeTuple is a convenience wrapper returning the serialized bytes
// StorageManager.InsertValue stores.
func EncodeTuple(t *Tuple) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteTupleTo(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeTuple is the inverse of EncodeTuple.
func DecodeTuple(data []byte, desc *TableSchema) (*Tuple, error) {
	return ReadTupleFrom(bytes.NewReader(data), desc)
}
