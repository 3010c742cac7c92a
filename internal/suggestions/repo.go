package suggestions

import "context"

// SuggestionsRepo defines persistence operations for suggestions.
type SuggestionsRepo interface {
	Create(ctx context.Context, sg Suggestion) error
	ListByUser(ctx context.Context, userId string, limit, offset int) ([]Suggestion, error)
	Delete(ctx context.Context, userId, suggestionID string) error
}
