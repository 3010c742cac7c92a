package reports

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of ReportsRepo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Report // userId -> reports
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string][]Report),
	}
}

// Create stores a new report. At most one report per analysis.
func (r *MemoryRepo) Create(ctx context.Context, report Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.data[report.UserID] {
		if existing.AnalysisID == report.AnalysisID {
			return ErrAlreadyExists
		}
	}
	cp := report
	cp.FileKeys = copyKeys(report.FileKeys)
	r.data[report.UserID] = append(r.data[report.UserID], cp)
	return nil
}

// GetByAnalysis returns the report for an analysis owned by the user.
func (r *MemoryRepo) GetByAnalysis(ctx context.Context, userId, analysisID string) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rep := range r.data[userId] {
		if rep.AnalysisID == analysisID {
			cp := rep
			cp.FileKeys = copyKeys(rep.FileKeys)
			return cp, nil
		}
	}
	return Report{}, ErrNotFound
}

// ListByUser returns reports for a user, newest first, honoring limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userId string, limit, offset int) ([]Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	userReports := r.data[userId]
	r.mu.RUnlock()

	if len(userReports) == 0 || offset >= len(userReports) {
		return []Report{}, nil
	}

	out := make([]Report, len(userReports))
	copy(out, userReports)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return out[offset:end], nil
}

// DeleteByAnalysis removes the report for an analysis, if present.
func (r *MemoryRepo) DeleteByAnalysis(ctx context.Context, userId, analysisID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	userReports := r.data[userId]
	for i := range userReports {
		if userReports[i].AnalysisID == analysisID {
			r.data[userId] = append(userReports[:i], userReports[i+1:]...)
			return nil
		}
	}
	return nil
}

func copyKeys(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

var _ ReportsRepo = (*MemoryRepo)(nil)
