package suggestions

import (
	"context"
	"database/sql"
)

// PGRepo implements SuggestionsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new suggestion.
func (r *PGRepo) Create(ctx context.Context, sg Suggestion) error {
	const query = `
INSERT INTO suggestions (
    id,
    user_id,
    category,
    message,
    status,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		sg.ID,
		sg.UserID,
		sg.Category,
		sg.Message,
		sg.Status,
		sg.CreatedAt,
	)
	return err
}

// ListByUser returns suggestions for a user, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userId string, limit, offset int) ([]Suggestion, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, user_id, category, message, status, created_at
FROM suggestions
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userId, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Suggestion{}
	for rows.Next() {
		var sg Suggestion
		if err := rows.Scan(&sg.ID, &sg.UserID, &sg.Category, &sg.Message, &sg.Status, &sg.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, sg)
	}
	return out, rows.Err()
}

// Delete removes a suggestion for a user.
func (r *PGRepo) Delete(ctx context.Context, userId, suggestionID string) error {
	const query = `
DELETE FROM suggestions
WHERE user_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, userId, suggestionID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ SuggestionsRepo = (*PGRepo)(nil)
