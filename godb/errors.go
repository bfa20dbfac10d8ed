package godb

import "fmt"

// ErrorCode classifies the kinds of failure this engine can surface, per the
// error taxonomy: IO, validation (bad ValueId), execution (arithmetic over
// incompatible field kinds), and contract violations (operator lifecycle
// misuse), which are fatal.
type ErrorCode int

const (
	IOError ErrorCode = iota
	ValidationError
	ExecutionError
	ContractViolation
)

func (c ErrorCode) String() string {
	switch c {
	case IOError:
		return "IOError"
	case ValidationError:
		return "ValidationError"
	case ExecutionError:
		return "ExecutionError"
	case ContractViolation:
		return "ContractViolation"
	default:
		return "UnknownError"
	}
}

// DBError is the single error type returned across package boundaries,
// following the GoDBError{code, message} pattern used throughout the
// teaching lab's storage and tuple code.
type DBError struct {
	Code  ErrorCode
	Msg   string
	Cause error
}

func (e *DBError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *DBError) Unwrap() error {
	return e.Cause
}

func newIOError(msg string, cause error) error {
	return &DBError{Code: IOError, Msg: msg, Cause: cause}
}

func newValidationError(format string, args ...any) error {
	return &DBError{Code: ValidationError, Msg: fmt.Sprintf(format, args...)}
}

func newExecutionError(format string, args ...any) error {
	return &DBError{Code: ExecutionError, Msg: fmt.Sprintf(format, args...)}
}

// fatalf signals a ContractViolation: operator lifecycle misuse, or any other
// condition that indicates a bug in the caller rather than recoverable input.
// Compliant callers never catch this; a test suite observes it as a panic.
func fatalf(format string, args ...any) {
	panic(&DBError{Code: ContractViolation, Msg: fmt.Sprintf(format, args...)})
}
