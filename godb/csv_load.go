package godb

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadCSV reads a delimited text file and inserts one record per data line
// into container cid, interpreting each line's fields according to schema.
// hasHeader skips the first line; skipLastField drops a trailing empty
// field produced by a trailing separator on every line (some exported
// datasets do this).
//
// Returns a ValidationError naming the offending line on a field-count
// mismatch or an unparseable numeric field, rather than inserting a
// partial or malformed tuple.
func LoadCSV(sm *StorageManager, cid ContainerId, schema *TableSchema, file *os.File, hasHeader bool, sep string, skipLastField bool) (int, error) {
	scanner := bufio.NewScanner(file)
	lineNo := 0
	inserted := 0

	for scanner.Scan() {
		line := scanner.Text()
		lineNo++
		if lineNo == 1 && hasHeader {
			continue
		}

		fields := strings.Split(line, sep)
		if skipLastField {
			fields = fields[:len(fields)-1]
		}
		if len(fields) != len(schema.Columns) {
			return inserted, newValidationError("line %d (%q) has %d fields, schema expects %d", lineNo, line, len(fields), len(schema.Columns))
		}

		values := make([]Field, len(fields))
		for i, raw := range fields {
			raw = strings.TrimSpace(raw)
			switch schema.Columns[i].Kind {
			case FieldKindInt:
				v, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					return inserted, newValidationError("line %d: cannot parse %q as int column %q", lineNo, raw, schema.Columns[i].Name)
				}
				values[i] = IntField(int64(v))
			case FieldKindString:
				values[i] = StringField(raw)
			case FieldKindDecimal:
				mantissa, scale, err := parseCSVDecimal(raw)
				if err != nil {
					return inserted, newValidationError("line %d: cannot parse %q as decimal column %q", lineNo, raw, schema.Columns[i].Name)
				}
				values[i] = DecimalField(mantissa, scale)
			default:
				return inserted, newValidationError("line %d: unsupported column kind for %q", lineNo, schema.Columns[i].Name)
			}
		}

		tup, err := NewTuple(schema, values)
		if err != nil {
			return inserted, err
		}
		data, err := EncodeTuple(tup)
		if err != nil {
			return inserted, err
		}
		if _, err := sm.InsertValue(cid, data); err != nil {
			return inserted, fmt.Errorf("line %d: %w", lineNo, err)
		}
		inserted++
	}
	if err := scanner.Err(); err != nil {
		return inserted, newIOError("reading csv", err)
	}
	return inserted, nil
}

func parseCSVDecimal(raw string) (int64, uint16, error) {
	dot := strings.Index(raw, ".")
	if dot < 0 {
		v, err := strconv.ParseInt(raw, 10, 64)
		return v, 0, err
	}
	scale := uint16(len(raw) - dot - 1)
	digits := raw[:dot] + raw[dot+1:]
	v, err := strconv.ParseInt(digits, 10, 64)
	return v, scale, err
}
