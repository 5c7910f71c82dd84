package warehouse

import (
	"fmt"
)

// MissingFileError reports a source CSV that could not be opened. Startup
// aborts on this error; there are no retries.
type MissingFileError struct {
	File string
	Err  error
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("missing source file %s: %v", e.File, e.Err)
}

func (e *MissingFileError) Unwrap() error {
	return e.Err
}

// ParseError reports a malformed header or row in a source CSV, naming the
// file and the reason. Line is 1-based; 0 means the error is not tied to a
// specific line.
type ParseError struct {
	File   string
	Line   int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s line %d: %s", e.File, e.Line, e.Reason)
	}
	return fmt.Sprintf("parse %s: %s", e.File, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
