package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres. The processing log is stored as
// JSONB; additional document IDs live in the analysis_documents join table.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new analysis and its document links.
func (r *PGRepo) Create(ctx context.Context, analysis Analysis) error {
	const query = `
INSERT INTO analyses (
    id,
    user_id,
    mode,
    objective,
    area,
    report_type,
    language,
    geolocation,
    search_scope,
    source_count,
    include_search,
    include_images,
    document_id,
    status,
    cancel_requested,
    log,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	logJSON, err := json.Marshal(analysis.Log)
	if err != nil {
		return err
	}

	var documentID sql.NullString
	if analysis.DocumentID != "" {
		documentID = sql.NullString{String: analysis.DocumentID, Valid: true}
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(
		ctx,
		query,
		analysis.ID,
		analysis.UserID,
		string(analysis.Mode),
		analysis.Objective,
		analysis.Area,
		analysis.ReportType,
		analysis.Language,
		analysis.Geolocation,
		analysis.SearchScope,
		analysis.SourceCount,
		analysis.IncludeSearch,
		analysis.IncludeImages,
		documentID,
		analysis.Status,
		analysis.CancelRequested,
		logJSON,
		analysis.CreatedAt,
	)
	if err != nil {
		return err
	}

	const linkQuery = `
INSERT INTO analysis_documents (analysis_id, document_id, position)
VALUES ($1, $2, $3)`
	for i, docID := range analysis.DocumentIDs {
		if _, err := tx.ExecContext(ctx, linkQuery, analysis.ID, docID, i); err != nil {
			return err
		}
	}

	return tx.Commit()
}

const analysisColumns = `id, user_id, mode, objective, area, report_type, language, geolocation, search_scope, source_count, include_search, include_images, document_id, status, error_code, error_message, cancel_requested, log, started_at, completed_at, created_at`

// GetByID returns an analysis by ID.
func (r *PGRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	query := `
SELECT ` + analysisColumns + `
FROM analyses
WHERE id = $1`
	row := r.DB.QueryRowContext(ctx, query, analysisID)
	a, err := scanAnalysis(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}

	const linkQuery = `
SELECT document_id
FROM analysis_documents
WHERE analysis_id = $1
ORDER BY position`
	rows, err := r.DB.QueryContext(ctx, linkQuery, analysisID)
	if err != nil {
		return Analysis{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var docID string
		if err := rows.Scan(&docID); err != nil {
			return Analysis{}, err
		}
		a.DocumentIDs = append(a.DocumentIDs, docID)
	}
	return a, rows.Err()
}

// ListByUser returns analyses for a user, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `
SELECT ` + analysisColumns + `
FROM analyses
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Claim atomically moves pending to extracting. The WHERE status clause makes
// concurrent runners race on a single-row update; exactly one wins.
func (r *PGRepo) Claim(ctx context.Context, analysisID string, startedAt time.Time) (bool, error) {
	const query = `
UPDATE analyses
SET status = $1, started_at = $2
WHERE id = $3 AND status = $4`
	res, err := r.DB.ExecContext(ctx, query, StatusExtracting, startedAt.UTC(), analysisID, StatusPending)
	if err != nil {
		return false, err
	}
	affected, _ := res.RowsAffected()
	return affected == 1, nil
}

// UpdateStatus advances an active analysis. Terminal rows are left untouched.
func (r *PGRepo) UpdateStatus(ctx context.Context, analysisID, status string) error {
	const query = `
UPDATE analyses
SET status = $1
WHERE id = $2 AND status NOT IN ($3, $4, $5)`
	_, err := r.DB.ExecContext(ctx, query, status, analysisID, StatusCompleted, StatusError, StatusCancelled)
	return err
}

// SetTerminal records a terminal status. A terminal row is never overwritten.
func (r *PGRepo) SetTerminal(ctx context.Context, analysisID, status, errorCode, errorMessage string, completedAt time.Time) error {
	const query = `
UPDATE analyses
SET status = $1, error_code = $2, error_message = $3, completed_at = $4
WHERE id = $5 AND status NOT IN ($6, $7, $8)`
	var code, msg sql.NullString
	if errorCode != "" {
		code = sql.NullString{String: errorCode, Valid: true}
	}
	if errorMessage != "" {
		msg = sql.NullString{String: errorMessage, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query, status, code, msg, completedAt.UTC(), analysisID, StatusCompleted, StatusError, StatusCancelled)
	return err
}

// AppendLog appends one processing log line to the JSONB trail.
func (r *PGRepo) AppendLog(ctx context.Context, analysisID string, line LogLine) error {
	const query = `
UPDATE analyses
SET log = COALESCE(log, '[]'::jsonb) || $1::jsonb
WHERE id = $2`
	payload, err := json.Marshal([]LogLine{line})
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query, payload, analysisID)
	return err
}

// RequestCancel flags an active analysis for cooperative cancellation.
func (r *PGRepo) RequestCancel(ctx context.Context, userID, analysisID string) (bool, error) {
	const query = `
UPDATE analyses
SET cancel_requested = TRUE
WHERE id = $1 AND user_id = $2 AND status NOT IN ($3, $4, $5)`
	res, err := r.DB.ExecContext(ctx, query, analysisID, userID, StatusCompleted, StatusError, StatusCancelled)
	if err != nil {
		return false, err
	}
	affected, _ := res.RowsAffected()
	if affected == 1 {
		return true, nil
	}

	// Distinguish a terminal row from a missing one.
	const existsQuery = `SELECT 1 FROM analyses WHERE id = $1 AND user_id = $2`
	var one int
	if err := r.DB.QueryRowContext(ctx, existsQuery, analysisID, userID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, err
	}
	return false, nil
}

// ResetForRetry moves an error or cancelled analysis back to pending.
func (r *PGRepo) ResetForRetry(ctx context.Context, userID, analysisID string) error {
	const query = `
UPDATE analyses
SET status = $1,
    error_code = NULL,
    error_message = NULL,
    cancel_requested = FALSE,
    started_at = NULL,
    completed_at = NULL
WHERE id = $2 AND user_id = $3 AND status IN ($4, $5)`
	res, err := r.DB.ExecContext(ctx, query, StatusPending, analysisID, userID, StatusError, StatusCancelled)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 1 {
		return nil
	}

	const existsQuery = `SELECT 1 FROM analyses WHERE id = $1 AND user_id = $2`
	var one int
	if err := r.DB.QueryRowContext(ctx, existsQuery, analysisID, userID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return ErrNotRetryable
}

// Delete removes an analysis and its document links.
func (r *PGRepo) Delete(ctx context.Context, userID, analysisID string) error {
	const query = `
DELETE FROM analyses
WHERE id = $1 AND user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, analysisID, userID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClaimGuest reassigns analyses owned by a guest user to an authenticated user.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	const query = `
UPDATE analyses
SET user_id = $1
WHERE user_id = $2`
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

func scanAnalysis(row rowScanner) (Analysis, error) {
	var a Analysis
	var mode string
	var geolocation, searchScope, documentID, errorCode, errorMessage sql.NullString
	var logJSON []byte
	var startedAt, completedAt sql.NullTime
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&mode,
		&a.Objective,
		&a.Area,
		&a.ReportType,
		&a.Language,
		&geolocation,
		&searchScope,
		&a.SourceCount,
		&a.IncludeSearch,
		&a.IncludeImages,
		&documentID,
		&a.Status,
		&errorCode,
		&errorMessage,
		&a.CancelRequested,
		&logJSON,
		&startedAt,
		&completedAt,
		&a.CreatedAt,
	)
	if err != nil {
		return Analysis{}, err
	}
	a.Mode = Mode(mode)
	if geolocation.Valid {
		a.Geolocation = geolocation.String
	}
	if searchScope.Valid {
		a.SearchScope = searchScope.String
	}
	if documentID.Valid {
		a.DocumentID = documentID.String
	}
	if errorCode.Valid {
		a.ErrorCode = errorCode.String
	}
	if errorMessage.Valid {
		a.ErrorMessage = errorMessage.String
	}
	if len(logJSON) > 0 {
		if err := json.Unmarshal(logJSON, &a.Log); err != nil {
			return Analysis{}, err
		}
	}
	if startedAt.Valid {
		t := startedAt.Time
		a.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		a.CompletedAt = &t
	}
	return a, nil
}

var _ Repo = (*PGRepo)(nil)
