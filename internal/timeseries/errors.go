package timeseries

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn is returned when a CSV header lacks a required column
	ErrMissingColumn = errors.New("missing required column")

	// ErrBadValue is returned for a row whose timestamp or usage cannot be parsed
	ErrBadValue = errors.New("malformed value")
)

// LoadError reports why a data file could not be turned into a Store.
// Line is the 1-based line of the offending row, or 0 when the failure is
// not tied to a row (missing file, unreadable header, database errors).
type LoadError struct {
	Path string
	Line int
	Err  error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("loading %s: line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("loading %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
