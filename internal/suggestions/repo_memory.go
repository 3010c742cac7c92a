package suggestions

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of SuggestionsRepo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Suggestion // userId -> suggestions
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string][]Suggestion),
	}
}

// Create stores a new suggestion for a user.
func (r *MemoryRepo) Create(ctx context.Context, sg Suggestion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[sg.UserID] = append(r.data[sg.UserID], sg)
	return nil
}

// ListByUser returns suggestions for a user, newest first, honoring limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userId string, limit, offset int) ([]Suggestion, error) {
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
	userSgs := r.data[userId]
	r.mu.RUnlock()

	if len(userSgs) == 0 || offset >= len(userSgs) {
		return []Suggestion{}, nil
	}

	sgs := make([]Suggestion, len(userSgs))
	copy(sgs, userSgs)
	sort.Slice(sgs, func(i, j int) bool {
		return sgs[i].CreatedAt.After(sgs[j].CreatedAt)
	})

	end := len(sgs)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return sgs[offset:end], nil
}

// Delete removes a suggestion for a user.
func (r *MemoryRepo) Delete(ctx context.Context, userId, suggestionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sgs := r.data[userId]
	for i := range sgs {
		if sgs[i].ID == suggestionID {
			r.data[userId] = append(sgs[:i], sgs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

var _ SuggestionsRepo = (*MemoryRepo)(nil)
