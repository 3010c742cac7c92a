package reports

import "context"

// ReportsRepo defines persistence operations for generated reports.
type ReportsRepo interface {
	Create(ctx context.Context, report Report) error
	GetByAnalysis(ctx context.Context, userId, analysisID string) (Report, error)
	ListByUser(ctx context.Context, userId string, limit, offset int) ([]Report, error)
	// DeleteByAnalysis removes the report for an analysis, if any. Used when an
	// analysis is retried or deleted; deleting a missing report is not an error.
	DeleteByAnalysis(ctx context.Context, userId, analysisID string) error
}
