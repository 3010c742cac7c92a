package reports

import "errors"

var (
	// ErrNotFound indicates no report exists for the analysis, or it is not owned by the user.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a report was already stored for the analysis.
	ErrAlreadyExists = errors.New("already exists")
)
