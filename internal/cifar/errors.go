package cifar

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrMalformedBatch  = errors.New("malformed batch file")
	ErrLabelOutOfRange = errors.New("label out of range [0, 9]")
	ErrRecordCount     = errors.New("unexpected record count")
	ErrClassNames      = errors.New("invalid class name list")
)

// FormatError locates a decoding failure inside a batch file.
type FormatError struct {
	File   string // Batch file path, empty for in-memory readers
	Record int    // Zero-based record index, -1 when not record specific
	Err    error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	name := e.File
	if name == "" {
		name = "<reader>"
	}
	if e.Record >= 0 {
		return fmt.Sprintf("%s: record %d: %v", name, e.Record, e.Err)
	}
	return fmt.Sprintf("%s: %v", name, e.Err)
}

// Unwrap returns the underlying error.
func (e *FormatError) Unwrap() error {
	return e.Err
}
