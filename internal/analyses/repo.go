package analyses

import (
	"context"
	"time"
)

// Repo defines persistence operations for analyses.
type Repo interface {
	Create(ctx context.Context, analysis Analysis) error
	// GetByID returns an analysis by ID regardless of owner. Callers that act
	// on behalf of a user must check ownership themselves.
	GetByID(ctx context.Context, analysisID string) (Analysis, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error)
	// Claim atomically moves the analysis from pending to extracting and
	// stamps started_at. It returns false when the row was not pending, which
	// means another runner already claimed it or it was cancelled first.
	Claim(ctx context.Context, analysisID string, startedAt time.Time) (bool, error)
	// UpdateStatus advances an active analysis to the given active status.
	UpdateStatus(ctx context.Context, analysisID, status string) error
	// SetTerminal records a terminal status with optional error code/message.
	SetTerminal(ctx context.Context, analysisID, status, errorCode, errorMessage string, completedAt time.Time) error
	AppendLog(ctx context.Context, analysisID string, line LogLine) error
	// RequestCancel flags an active analysis for cooperative cancellation.
	// Returns false when the analysis is already terminal.
	RequestCancel(ctx context.Context, userID, analysisID string) (bool, error)
	// ResetForRetry moves an error or cancelled analysis back to pending,
	// clearing error fields, the cancel flag and the stage timestamps.
	ResetForRetry(ctx context.Context, userID, analysisID string) error
	Delete(ctx context.Context, userID, analysisID string) error
}
