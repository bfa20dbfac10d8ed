package godb

import (
	"fmt"
	"strings"

	"golang.org/x/exp/constraints"
)

// FieldKind enumerates the possible shapes a Field can take. A NULL field
// carries its kind as FieldKindNull regardless of the column's declared
// type; comparisons and arithmetic treat it specially rather than failing.
type FieldKind int

const (
	FieldKindNull FieldKind = iota
	FieldKindInt
	FieldKindDecimal
	FieldKindString
)

func (k FieldKind) String() string {
	switch k {
	case FieldKindNull:
		return "NULL"
	case FieldKindInt:
		return "INT"
	case FieldKindDecimal:
		return "DECIMAL"
	case FieldKindString:
		return "STRING"
	default:
		return "UNKNOWN"
	}
}

// Field is the engine's tagged-union value type: exactly one of Int,
// Decimal, or Str is meaningful, selected by Kind. A Field of Kind
// FieldKindNull carries none of them.
type Field struct {
	Kind FieldKind

	Int     int64
	Decimal DecimalValue
	Str     string
}

// DecimalValue is a fixed-scale decimal: Mantissa * 10^-Scale. Two decimals
// compare and add correctly only once rescaled to a common Scale; Add does
// this rescaling itself.
type DecimalValue struct {
	Mantissa int64
	Scale    uint16
}

func NullField() Field {
	return Field{Kind: FieldKindNull}
}

func IntField(v int64) Field {
	return Field{Kind: FieldKindInt, Int: v}
}

func DecimalField(mantissa int64, scale uint16) Field {
	return Field{Kind: FieldKindDecimal, Decimal: DecimalValue{Mantissa: mantissa, Scale: scale}}
}

func StringField(v string) Field {
	return Field{Kind: FieldKindString, Str: v}
}

func (f Field) IsNull() bool {
	return f.Kind == FieldKindNull
}

func (f Field) String() string {
	switch f.Kind {
	case FieldKindNull:
		return "NULL"
	case FieldKindInt:
		return fmt.Sprintf("%d", f.Int)
	case FieldKindDecimal:
		return f.Decimal.String()
	case FieldKindString:
		return f.Str
	default:
		return "?"
	}
}

func (d DecimalValue) String() string {
	if d.Scale == 0 {
		return fmt.Sprintf("%d", d.Mantissa)
	}
	neg := d.Mantissa < 0
	m := d.Mantissa
	if neg {
		m = -m
	}
	s := fmt.Sprintf("%d", m)
	for len(s) <= int(d.Scale) {
		s = "0" + s
	}
	intPart := s[:len(s)-int(d.Scale)]
	fracPart := s[len(s)-int(d.Scale):]
	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s%s.%s", sign, intPart, fracPart)
}

// AsFloat64 returns the decimal's value as a float64, for use in aggregate
// finalization where exact fixed-point arithmetic is not required (AVG).
func (d DecimalValue) AsFloat64() float64 {
	scale := float64(1)
	for i := uint16(0); i < d.Scale; i++ {
		scale *= 10
	}
	return float64(d.Mantissa) / scale
}

func rescale(d DecimalValue, scale uint16) DecimalValue {
	for d.Scale < scale {
		d.Mantissa *= 10
		d.Scale++
	}
	for d.Scale > scale {
		d.Mantissa /= 10
		d.Scale--
	}
	return d
}

// Add combines two fields of compatible kind. NULL is absorbing: NULL + x
// is NULL for any x, matching standard SQL null-propagation semantics.
// Adding fields of two different non-null kinds (other than mixing Int and
// Decimal, which widens to Decimal) is an ExecutionError: the engine never
// silently coerces a string into a number.
func (f Field) Add(other Field) (Field, error) {
	if f.IsNull() || other.IsNull() {
		return NullField(), nil
	}
	switch {
	case f.Kind == FieldKindInt && other.Kind == FieldKindInt:
		return IntField(f.Int + other.Int), nil
	case f.Kind == FieldKindDecimal && other.Kind == FieldKindDecimal:
		scale := f.Decimal.Scale
		if other.Decimal.Scale > scale {
			scale = other.Decimal.Scale
		}
		a := rescale(f.Decimal, scale)
		b := rescale(other.Decimal, scale)
		return Field{Kind: FieldKindDecimal, Decimal: DecimalValue{Mantissa: a.Mantissa + b.Mantissa, Scale: scale}}, nil
	case f.Kind == FieldKindInt && other.Kind == FieldKindDecimal:
		return f.intAsDecimal().Add(other)
	case f.Kind == FieldKindDecimal && other.Kind == FieldKindInt:
		return f.Add(other.intAsDecimal())
	default:
		return Field{}, newExecutionError("cannot add %s field to %s field", f.Kind, other.Kind)
	}
}

func (f Field) intAsDecimal() Field {
	if f.Kind != FieldKindInt {
		return f
	}
	return DecimalField(f.Int, 0)
}

// BoolOp is a comparison operator usable between two fields of the same
// kind (or either operand NULL, in which case every comparison is false
// except the implementation-defined three-valued logic callers must check
// for explicitly via IsNull).
type BoolOp int

const (
	OpEquals BoolOp = iota
	OpNotEquals
	OpLessThan
	OpLessThanOrEqual
	OpGreaterThan
	OpGreaterThanOrEqual
)

// Compare evaluates op between f and other. NULL compares false against
// everything (including another NULL), matching SQL's unknown-propagation
// rule rather than a total order.
func (f Field) Compare(op BoolOp, other Field) (bool, error) {
	if f.IsNull() || other.IsNull() {
		return false, nil
	}
	c, err := f.compareValues(other)
	if err != nil {
		return false, err
	}
	switch op {
	case OpEquals:
		return c == 0, nil
	case OpNotEquals:
		return c != 0, nil
	case OpLessThan:
		return c < 0, nil
	case OpLessThanOrEqual:
		return c <= 0, nil
	case OpGreaterThan:
		return c > 0, nil
	case OpGreaterThanOrEqual:
		return c >= 0, nil
	default:
		return false, newExecutionError("unknown comparison operator %d", op)
	}
}

// compareValues returns -1/0/1 and requires f and other to be non-null and
// of compatible kind (Int/Decimal widen to each other; String only
// compares to String).
func (f Field) compareValues(other Field) (int, error) {
	switch {
	case f.Kind == FieldKindString && other.Kind == FieldKindString:
		return strings.Compare(f.Str, other.Str), nil
	case f.Kind == FieldKindInt && other.Kind == FieldKindInt:
		return cmpInt64(f.Int, other.Int), nil
	case f.Kind == FieldKindDecimal || other.Kind == FieldKindDecimal:
		a, b := f, other
		if a.Kind == FieldKindInt {
			a = a.intAsDecimal()
		}
		if b.Kind == FieldKindInt {
			b = b.intAsDecimal()
		}
		if a.Kind != FieldKindDecimal || b.Kind != FieldKindDecimal {
			return 0, newExecutionError("cannot compare %s field to %s field", f.Kind, other.Kind)
		}
		scale := a.Decimal.Scale
		if b.Decimal.Scale > scale {
			scale = b.Decimal.Scale
		}
		return cmpInt64(rescale(a.Decimal, scale).Mantissa, rescale(b.Decimal, scale).Mantissa), nil
	default:
		return 0, newExecutionError("cannot compare %s field to %s field", f.Kind, other.Kind)
	}
}

// cmpOrdered is the shared three-way comparison backing every numeric
// Field comparison, parameterized so Int and the rescaled Decimal mantissa
// path (both int64) share one implementation.
func cmpOrdered[T constraints.Ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpInt64(a, b int64) int {
	return cmpOrdered(a, b)
}
