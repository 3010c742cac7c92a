package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGRepo implements ReportsRepo using Postgres. File keys are stored as JSONB.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new report. One report per analysis is enforced by a
// unique index on analysis_id.
func (r *PGRepo) Create(ctx context.Context, report Report) error {
	const query = `
INSERT INTO reports (
    id,
    analysis_id,
    user_id,
    title,
    markdown,
    area,
    report_type,
    language,
    file_keys,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	keys, err := json.Marshal(report.FileKeys)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(
		ctx,
		query,
		report.ID,
		report.AnalysisID,
		report.UserID,
		report.Title,
		report.Markdown,
		report.Area,
		report.ReportType,
		report.Language,
		keys,
		report.CreatedAt,
	)
	if err != nil && isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

const reportColumns = `id, analysis_id, user_id, title, markdown, area, report_type, language, file_keys, created_at`

// GetByAnalysis returns the report for an analysis owned by the user.
func (r *PGRepo) GetByAnalysis(ctx context.Context, userId, analysisID string) (Report, error) {
	query := `
SELECT ` + reportColumns + `
FROM reports
WHERE user_id = $1 AND analysis_id = $2`
	row := r.DB.QueryRowContext(ctx, query, userId, analysisID)
	rep, err := scanReport(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Report{}, ErrNotFound
		}
		return Report{}, err
	}
	return rep, nil
}

// ListByUser returns reports for a user, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userId string, limit, offset int) ([]Report, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `
SELECT ` + reportColumns + `
FROM reports
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userId, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Report{}
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

// DeleteByAnalysis removes the report for an analysis, if any.
func (r *PGRepo) DeleteByAnalysis(ctx context.Context, userId, analysisID string) error {
	const query = `
DELETE FROM reports
WHERE user_id = $1 AND analysis_id = $2`
	_, err := r.DB.ExecContext(ctx, query, userId, analysisID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (Report, error) {
	var rep Report
	var area, reportType, language sql.NullString
	var keys []byte
	err := row.Scan(
		&rep.ID,
		&rep.AnalysisID,
		&rep.UserID,
		&rep.Title,
		&rep.Markdown,
		&area,
		&reportType,
		&language,
		&keys,
		&rep.CreatedAt,
	)
	if err != nil {
		return Report{}, err
	}
	if area.Valid {
		rep.Area = area.String
	}
	if reportType.Valid {
		rep.ReportType = reportType.String
	}
	if language.Valid {
		rep.Language = language.String
	}
	if len(keys) > 0 {
		if err := json.Unmarshal(keys, &rep.FileKeys); err != nil {
			return Report{}, err
		}
	}
	return rep, nil
}

func isUniqueViolation(err error) bool {
	type coder interface{ SQLState() string }
	var c coder
	if errors.As(err, &c) {
		return c.SQLState() == "23505"
	}
	return false
}

var _ ReportsRepo = (*PGRepo)(nil)
