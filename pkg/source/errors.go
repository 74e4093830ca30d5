package source

import "errors"

var (
	// ErrSourceUnavailable means the file is missing or could not be read.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrEncodingUnsupported means the requested encoding is unknown and UTF-8 was used.
	ErrEncodingUnsupported = errors.New("encoding unsupported")
	// ErrMalformedRow means a row could not be parsed or lacks the required columns.
	ErrMalformedRow = errors.New("malformed row")
	// ErrInvalidDescriptor means the descriptor itself cannot be loaded.
	ErrInvalidDescriptor = errors.New("invalid source descriptor")
)
