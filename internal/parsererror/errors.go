package parsererror

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAggregationUnavailable is matched by every AggregationUnavailableError.
var ErrAggregationUnavailable = errors.New("aggregation unavailable")

// ErrCorrelationUndefined is matched by every CorrelationUndefinedError.
var ErrCorrelationUndefined = errors.New("correlation undefined")

// ParseError represents a single cell that could not be interpreted.
// The normalizer recovers from it by storing the missing marker.
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// FileUnreadableError is returned when an input file cannot be opened,
// read or decoded. It is fatal for the dataset only.
type FileUnreadableError struct {
	FilePath string
	Err      error
}

func (e *FileUnreadableError) Error() string {
	return fmt.Sprintf("cannot read '%s': %v", e.FilePath, e.Err)
}

func (e *FileUnreadableError) Unwrap() error {
	return e.Err
}

// SchemaMismatchError represents a table whose shape does not match the
// schema it is being normalized against.
type SchemaMismatchError struct {
	FilePath string
	Expected int
	Actual   int
	Columns  []string
}

func (e *SchemaMismatchError) Error() string {
	msg := fmt.Sprintf("schema mismatch: expected %d columns, got %d", e.Expected, e.Actual)
	if len(e.Columns) > 0 {
		msg += fmt.Sprintf(" [%s]", strings.Join(e.Columns, ", "))
	}
	if e.FilePath != "" {
		msg = fmt.Sprintf("%s in file '%s'", msg, e.FilePath)
	}
	return msg
}

// AggregationUnavailableError explains why a monthly series could not be built.
type AggregationUnavailableError struct {
	Series string
	Reason string
}

func (e *AggregationUnavailableError) Error() string {
	return fmt.Sprintf("aggregation unavailable for %s: %s", e.Series, e.Reason)
}

func (e *AggregationUnavailableError) Is(target error) bool {
	return target == ErrAggregationUnavailable
}

// CorrelationUndefinedError is returned when two series cannot be correlated.
type CorrelationUndefinedError struct {
	Overlap int
	Reason  string
}

func (e *CorrelationUndefinedError) Error() string {
	return fmt.Sprintf("correlation undefined (%d overlapping months): %s", e.Overlap, e.Reason)
}

func (e *CorrelationUndefinedError) Is(target error) bool {
	return target == ErrCorrelationUndefined
}
