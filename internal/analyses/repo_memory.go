package analyses

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.Mutex
	data map[string]Analysis // analysisID -> analysis
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Analysis),
	}
}

// Create stores a new analysis.
func (r *MemoryRepo) Create(ctx context.Context, analysis Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[analysis.ID] = cloneAnalysis(analysis)
	return nil
}

// GetByID returns an analysis by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.data[analysisID]
	if !ok {
		return Analysis{}, ErrNotFound
	}
	return cloneAnalysis(a), nil
}

// ListByUser returns analyses for a user, newest first, honoring limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.Lock()
	var out []Analysis
	for _, a := range r.data {
		if a.UserID == userID {
			out = append(out, cloneAnalysis(a))
		}
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if offset >= len(out) {
		return []Analysis{}, nil
	}
	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

// Claim performs the pending to extracting compare-and-set under the mutex.
func (r *MemoryRepo) Claim(ctx context.Context, analysisID string, startedAt time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.data[analysisID]
	if !ok {
		return false, ErrNotFound
	}
	if a.Status != StatusPending {
		return false, nil
	}
	a.Status = StatusExtracting
	started := startedAt.UTC()
	a.StartedAt = &started
	r.data[analysisID] = a
	return true, nil
}

// UpdateStatus advances an active analysis. Terminal rows are left untouched.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, analysisID, status string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.data[analysisID]
	if !ok {
		return ErrNotFound
	}
	if IsTerminal(a.Status) {
		return nil
	}
	a.Status = status
	r.data[analysisID] = a
	return nil
}

// SetTerminal records a terminal status. A terminal row is never overwritten.
func (r *MemoryRepo) SetTerminal(ctx context.Context, analysisID, status, errorCode, errorMessage string, completedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.data[analysisID]
	if !ok {
		return ErrNotFound
	}
	if IsTerminal(a.Status) {
		return nil
	}
	a.Status = status
	a.ErrorCode = errorCode
	a.ErrorMessage = errorMessage
	done := completedAt.UTC()
	a.CompletedAt = &done
	r.data[analysisID] = a
	return nil
}

// AppendLog appends one processing log line.
func (r *MemoryRepo) AppendLog(ctx context.Context, analysisID string, line LogLine) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.data[analysisID]
	if !ok {
		return ErrNotFound
	}
	a.Log = append(a.Log, line)
	r.data[analysisID] = a
	return nil
}

// RequestCancel flags an active analysis for cancellation.
func (r *MemoryRepo) RequestCancel(ctx context.Context, userID, analysisID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.data[analysisID]
	if !ok || a.UserID != userID {
		return false, ErrNotFound
	}
	if IsTerminal(a.Status) {
		return false, nil
	}
	a.CancelRequested = true
	r.data[analysisID] = a
	return true, nil
}

// ResetForRetry moves an error or cancelled analysis back to pending.
func (r *MemoryRepo) ResetForRetry(ctx context.Context, userID, analysisID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.data[analysisID]
	if !ok || a.UserID != userID {
		return ErrNotFound
	}
	if a.Status != StatusError && a.Status != StatusCancelled {
		return ErrNotRetryable
	}
	a.Status = StatusPending
	a.ErrorCode = ""
	a.ErrorMessage = ""
	a.CancelRequested = false
	a.StartedAt = nil
	a.CompletedAt = nil
	r.data[analysisID] = a
	return nil
}

// Delete removes an analysis owned by the user.
func (r *MemoryRepo) Delete(ctx context.Context, userID, analysisID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.data[analysisID]
	if !ok || a.UserID != userID {
		return ErrNotFound
	}
	delete(r.data, analysisID)
	return nil
}

// ClaimGuest reassigns analyses owned by a guest user to an authenticated user.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	migrated := 0
	for id, a := range r.data {
		if a.UserID == guestUserID {
			a.UserID = authedUserID
			r.data[id] = a
			migrated++
		}
	}
	return migrated, nil
}

func cloneAnalysis(a Analysis) Analysis {
	cp := a
	if a.DocumentIDs != nil {
		cp.DocumentIDs = append([]string(nil), a.DocumentIDs...)
	}
	if a.Log != nil {
		cp.Log = append([]LogLine(nil), a.Log...)
	}
	return cp
}

var _ Repo = (*MemoryRepo)(nil)
