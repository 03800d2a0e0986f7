package json

import (
	"errors"
	"fmt"
)

// ErrMissingField is wrapped by a ParseError raised for an absent or empty
// required field.
var ErrMissingField = errors.New("missing required field")

// ParseError reports input whose content does not match the expected record
// shape. Record is the 1-based position of the offending record in the file.
type ParseError struct {
	Path   string
	Record int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: record %d: %v", e.Path, e.Record, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
