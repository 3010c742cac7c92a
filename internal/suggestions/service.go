package suggestions

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxMessageLen = 2000

// Service contains business logic for suggestions.
type Service struct {
	Repo SuggestionsRepo
}

// Create validates and stores a new suggestion as status new.
func (s *Service) Create(ctx context.Context, userId, category, message string) (Suggestion, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		category = "other"
	}
	if !validCategories[category] {
		return Suggestion{}, ErrInvalidInput
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return Suggestion{}, ErrInvalidInput
	}
	if len([]rune(message)) > maxMessageLen {
		message = string([]rune(message)[:maxMessageLen])
	}

	sg := Suggestion{
		ID:        uuid.NewString(),
		UserID:    userId,
		Category:  category,
		Message:   message,
		Status:    StatusNew,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, sg); err != nil {
		return Suggestion{}, err
	}
	return sg, nil
}

// List returns a page of the user's suggestions, newest first.
func (s *Service) List(ctx context.Context, userId string, limit, offset int) ([]Suggestion, error) {
	if userId == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userId, limit, offset)
}

// Delete removes a user's suggestion.
func (s *Service) Delete(ctx context.Context, userId, suggestionID string) error {
	if userId == "" || suggestionID == "" {
		return ErrInvalidInput
	}
	return s.Repo.Delete(ctx, userId, suggestionID)
}
