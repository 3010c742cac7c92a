package documents

import (
	"context"
	"time"
)

// DocumentsRepo defines persistence operations for documents.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, userId, documentID string) (Document, error)
	ListByUser(ctx context.Context, userId string, limit, offset int) ([]Document, error)
	UpdateExtraction(ctx context.Context, userId, documentID, extractedKey, method string, charCount int, extractedAt time.Time) error
	Delete(ctx context.Context, userId, documentID string) error
}
