package documents

import "errors"

var (
	// ErrNotFound indicates the document does not exist or is not owned by the user.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates client-supplied fields failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedType indicates the file extension is not accepted for analysis.
	ErrUnsupportedType = errors.New("unsupported file type")
)
