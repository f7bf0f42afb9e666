package fetch

import "errors"

var (
	// ErrUnexpectedStatus indicates the source responded with a non-2xx code.
	ErrUnexpectedStatus = errors.New("unexpected response status")

	// ErrEmptyDocument indicates the source responded with an empty body.
	ErrEmptyDocument = errors.New("document body is empty")

	// ErrDocumentTooLarge indicates the body exceeded the configured size cap.
	ErrDocumentTooLarge = errors.New("document exceeds size limit")

	// ErrEmptyURL indicates Fetch was called without a source URL.
	ErrEmptyURL = errors.New("source url cannot be empty")
)
