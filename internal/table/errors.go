package table

import (
	"errors"
	"fmt"
)

// ErrEmptyData indicates the input has no header row to build columns from.
var ErrEmptyData = errors.New("no columns to parse from input")

// ErrUnsupportedFormat indicates the file extension has no loader.
var ErrUnsupportedFormat = errors.New("unsupported table format")

// ParseError reports malformed input at a given 1-based line.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }
