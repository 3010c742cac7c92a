package suggestions

import "errors"

var (
	// ErrNotFound indicates the suggestion does not exist or is not owned by the user.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates client-supplied fields failed validation.
	ErrInvalidInput = errors.New("invalid input")
)
