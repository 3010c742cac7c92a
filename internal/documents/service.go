package documents

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"joel-backend/internal/shared/storage/object"
)

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".md":   true,
}

// Service contains business logic for documents.
type Service struct {
	Store object.ObjectStore
	Repo  DocumentsRepo
}

// Upload saves the file to object storage and records the document.
func (s *Service) Upload(ctx context.Context, userId, fileName string, r io.Reader) (Document, error) {
	if fileName == "" {
		return Document{}, ErrInvalidInput
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedExtensions[ext] {
		return Document{}, ErrUnsupportedType
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, userId, fileName, r)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:         uuid.NewString(),
		UserID:     userId,
		FileName:   fileName,
		MimeType:   mimeType,
		SizeBytes:  size,
		StorageKey: storageKey,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	return doc, nil
}

// CreateFromS3 records a document that was uploaded directly to S3.
func (s *Service) CreateFromS3(ctx context.Context, userId, s3Key, originalFileName, contentType string, sizeBytes int64) (Document, error) {
	if userId == "" || s3Key == "" || originalFileName == "" {
		return Document{}, ErrInvalidInput
	}
	ext := strings.ToLower(filepath.Ext(originalFileName))
	if !allowedExtensions[ext] {
		return Document{}, ErrUnsupportedType
	}

	doc := Document{
		ID:               uuid.NewString(),
		UserID:           userId,
		FileName:         originalFileName,
		OriginalFilename: originalFileName,
		MimeType:         contentType,
		ContentType:      contentType,
		SizeBytes:        sizeBytes,
		StorageProvider:  "s3",
		StorageKey:       s3Key,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	return doc, nil
}

// Get returns a document by ID for its owner.
func (s *Service) Get(ctx context.Context, userId, documentID string) (Document, error) {
	if userId == "" || documentID == "" {
		return Document{}, errors.New("user id and document id required")
	}
	return s.Repo.GetByID(ctx, userId, documentID)
}

// List returns a page of the user's documents, newest first.
func (s *Service) List(ctx context.Context, userId string, limit, offset int) ([]Document, error) {
	if userId == "" {
		return nil, errors.New("user id required")
	}
	return s.Repo.ListByUser(ctx, userId, limit, offset)
}

// RecordExtraction stores the extracted text key plus extraction metadata.
func (s *Service) RecordExtraction(ctx context.Context, userId, documentID, extractedKey, method string, charCount int) error {
	return s.Repo.UpdateExtraction(ctx, userId, documentID, extractedKey, method, charCount, time.Now().UTC())
}

// Delete removes a user's document record.
func (s *Service) Delete(ctx context.Context, userId, documentID string) error {
	if userId == "" || documentID == "" {
		return ErrInvalidInput
	}
	return s.Repo.Delete(ctx, userId, documentID)
}
