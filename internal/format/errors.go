package format

import "errors"

// Common errors.
var (
	ErrShapeMismatch = errors.New("shape mismatch")
	ErrDType         = errors.New("unsupported dtype")
	ErrUnknownLayout = errors.New("unknown channel layout")
)
