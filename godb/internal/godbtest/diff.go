// Package godbtest holds small helpers shared across this engine's
// table-driven tests.
package godbtest

import (
	"testing"

	"github.com/d4l3k/messagediff"
)

// RequireEqual fails t with a structural diff of got vs want when they are
// not deeply equal, rather than just printing both values side by side.
func RequireEqual(t *testing.T, got, want interface{}, context string) {
	t.Helper()
	diff, equal := messagediff.PrettyDiff(want, got)
	if !equal {
		t.Fatalf("%s: values differ:\n%s", context, diff)
	}
}
