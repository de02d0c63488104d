package catalog

import "errors"

var (
	// ErrMissingRequiredFile is returned when the TaskData document or a log
	// file it references is absent.
	ErrMissingRequiredFile = errors.New("missing required file")
	// ErrMalformedDocument is returned when the document is not well-formed XML.
	ErrMalformedDocument = errors.New("malformed document")
)
