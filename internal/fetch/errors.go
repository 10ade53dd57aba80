package fetch

import "errors"

// Common errors.
var (
	ErrChecksumMismatch    = errors.New("checksum mismatch: archive may be corrupted")
	ErrUnsupportedProtocol = errors.New("unsupported source protocol")
	ErrIllegalPath         = errors.New("archive entry escapes destination")
	ErrIncompleteArchive   = errors.New("archive is missing batch files")
	ErrBadStatus           = errors.New("unexpected response status")
	ErrEntryTooLarge       = errors.New("archive entry exceeds size limit")
)
