package documents

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements DocumentsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    user_id,
    file_name,
    original_filename,
    mime_type,
    content_type,
    size_bytes,
    storage_provider,
    storage_key,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	originalName := doc.OriginalFilename
	if originalName == "" {
		originalName = doc.FileName
	}
	contentType := doc.ContentType
	if contentType == "" {
		contentType = doc.MimeType
	}
	storageProvider := doc.StorageProvider
	if storageProvider == "" {
		storageProvider = "local"
	}

	var storageKey sql.NullString
	if doc.StorageKey != "" {
		storageKey = sql.NullString{String: doc.StorageKey, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.UserID,
		doc.FileName,
		originalName,
		doc.MimeType,
		contentType,
		doc.SizeBytes,
		storageProvider,
		storageKey,
		doc.CreatedAt,
	)
	return err
}

const docColumns = `id, user_id, file_name, original_filename, mime_type, content_type, size_bytes, storage_provider, storage_key, extracted_text_key, extraction_method, char_count, extracted_at, created_at`

// GetByID returns a document by ID for a user.
func (r *PGRepo) GetByID(ctx context.Context, userId, documentID string) (Document, error) {
	query := `
SELECT ` + docColumns + `
FROM documents
WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL`
	row := r.DB.QueryRowContext(ctx, query, userId, documentID)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListByUser returns documents for a user, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userId string, limit, offset int) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `
SELECT ` + docColumns + `
FROM documents
WHERE user_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userId, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// UpdateExtraction stores the extracted text metadata for a document.
// The first extraction wins; later writes do not overwrite.
func (r *PGRepo) UpdateExtraction(ctx context.Context, userId, documentID, extractedKey, method string, charCount int, extractedAt time.Time) error {
	const query = `
UPDATE documents
SET extracted_text_key = $1, extraction_method = $2, char_count = $3, extracted_at = $4
WHERE user_id = $5 AND id = $6 AND extracted_text_key IS NULL`
	_, err := r.DB.ExecContext(ctx, query, extractedKey, method, charCount, extractedAt, userId, documentID)
	return err
}

// Delete soft-deletes a document for a user.
func (r *PGRepo) Delete(ctx context.Context, userId, documentID string) error {
	const query = `
UPDATE documents
SET deleted_at = NOW()
WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, userId, documentID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClaimGuest reassigns documents owned by a guest user to an authenticated user.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	const query = `
UPDATE documents
SET user_id = $1
WHERE user_id = $2 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	updated, _ := res.RowsAffected()
	return int(updated), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var originalName, contentType, storageProvider, storageKey, extractedKey, method sql.NullString
	var charCount sql.NullInt64
	var extractedAt sql.NullTime
	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.FileName,
		&originalName,
		&doc.MimeType,
		&contentType,
		&doc.SizeBytes,
		&storageProvider,
		&storageKey,
		&extractedKey,
		&method,
		&charCount,
		&extractedAt,
		&doc.CreatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	if originalName.Valid {
		doc.OriginalFilename = originalName.String
	}
	if contentType.Valid {
		doc.ContentType = contentType.String
	}
	if storageProvider.Valid {
		doc.StorageProvider = storageProvider.String
	}
	if storageKey.Valid {
		doc.StorageKey = storageKey.String
	}
	if extractedKey.Valid {
		doc.ExtractedTextKey = extractedKey.String
	}
	if method.Valid {
		doc.ExtractionMethod = method.String
	}
	if charCount.Valid {
		doc.CharCount = int(charCount.Int64)
	}
	if extractedAt.Valid {
		doc.ExtractedAt = &extractedAt.Time
	}
	return doc, nil
}

var _ DocumentsRepo = (*PGRepo)(nil)
