package extract

import "errors"

var (
	// ErrEmptyInput indicates the extractor was given no bytes.
	ErrEmptyInput = errors.New("document bytes are empty")

	// ErrMalformedDocument indicates the bytes are not a well-formed PDF.
	ErrMalformedDocument = errors.New("malformed pdf document")
)
