package account

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"joel-backend/internal/analyses"
	"joel-backend/internal/documents"
	"joel-backend/internal/reports"
	"joel-backend/internal/suggestions"
	"joel-backend/internal/users"
)

type Service struct {
	DocRepo         documents.DocumentsRepo
	AnalysisRepo    analyses.Repo
	ReportsRepo     reports.ReportsRepo
	SuggestionsRepo suggestions.SuggestionsRepo
	UsersRepo       users.Repo
}

type ClaimResult struct {
	MigratedDocuments int `json:"migratedDocuments"`
	MigratedAnalyses  int `json:"migratedAnalyses"`
}

func NewService(docRepo documents.DocumentsRepo, analysisRepo analyses.Repo, reportsRepo reports.ReportsRepo, suggestionsRepo suggestions.SuggestionsRepo, usersRepo users.Repo) *Service {
	return &Service{
		DocRepo:         docRepo,
		AnalysisRepo:    analysisRepo,
		ReportsRepo:     reportsRepo,
		SuggestionsRepo: suggestionsRepo,
		UsersRepo:       usersRepo,
	}
}

func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(authedUserID) == "" {
		return ClaimResult{}, errors.New("guestUserID and authedUserID are required")
	}

	if db := s.pgDB(); db != nil {
		return claimWithTx(ctx, db, guestUserID, authedUserID)
	}

	docCount, err := claimDocs(ctx, s.DocRepo, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	analysisCount, err := claimAnalyses(ctx, s.AnalysisRepo, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{MigratedDocuments: docCount, MigratedAnalyses: analysisCount}, nil
}

// DeleteAccount removes the user and everything they own: reports,
// analyses, documents, suggestions, usage counters.
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("userID is required")
	}

	if db := s.pgDB(); db != nil {
		return deleteWithTx(ctx, db, userID)
	}
	return s.deleteViaRepos(ctx, userID)
}

func (s *Service) pgDB() *sql.DB {
	docPG, ok := s.DocRepo.(*documents.PGRepo)
	if !ok || docPG == nil || docPG.DB == nil {
		return nil
	}
	if analysisPG, ok := s.AnalysisRepo.(*analyses.PGRepo); ok && analysisPG != nil && analysisPG.DB != nil {
		return analysisPG.DB
	}
	return nil
}

func claimWithTx(ctx context.Context, db *sql.DB, guestUserID, authedUserID string) (ClaimResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ClaimResult{}, err
	}
	defer tx.Rollback()

	docRes, err := tx.ExecContext(ctx, `UPDATE documents SET user_id = $1 WHERE user_id = $2 AND deleted_at IS NULL`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	docCount, _ := docRes.RowsAffected()

	analysisRes, err := tx.ExecContext(ctx, `UPDATE analyses SET user_id = $1 WHERE user_id = $2`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	analysisCount, _ := analysisRes.RowsAffected()

	if _, err := tx.ExecContext(ctx, `UPDATE reports SET user_id = $1 WHERE user_id = $2`, authedUserID, guestUserID); err != nil {
		return ClaimResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{MigratedDocuments: int(docCount), MigratedAnalyses: int(analysisCount)}, nil
}

func deleteWithTx(ctx context.Context, db *sql.DB, userID string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Children first, then the user row.
	statements := []string{
		`DELETE FROM reports WHERE user_id = $1`,
		`DELETE FROM analysis_documents WHERE analysis_id IN (SELECT id FROM analyses WHERE user_id = $1)`,
		`DELETE FROM analyses WHERE user_id = $1`,
		`DELETE FROM documents WHERE user_id = $1`,
		`DELETE FROM suggestions WHERE user_id = $1`,
		`DELETE FROM usage_counters WHERE user_id = $1`,
		`DELETE FROM users WHERE id = $1`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, userID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Service) deleteViaRepos(ctx context.Context, userID string) error {
	const pageSize = 100

	if s.AnalysisRepo != nil {
		for {
			list, err := s.AnalysisRepo.ListByUser(ctx, userID, pageSize, 0)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				break
			}
			for _, a := range list {
				if s.ReportsRepo != nil {
					if err := s.ReportsRepo.DeleteByAnalysis(ctx, userID, a.ID); err != nil {
						return err
					}
				}
				if err := s.AnalysisRepo.Delete(ctx, userID, a.ID); err != nil && !errors.Is(err, analyses.ErrNotFound) {
					return err
				}
			}
		}
	}

	if s.DocRepo != nil {
		for {
			docs, err := s.DocRepo.ListByUser(ctx, userID, pageSize, 0)
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				break
			}
			for _, d := range docs {
				if err := s.DocRepo.Delete(ctx, userID, d.ID); err != nil && !errors.Is(err, documents.ErrNotFound) {
					return err
				}
			}
		}
	}

	if s.SuggestionsRepo != nil {
		for {
			sgs, err := s.SuggestionsRepo.ListByUser(ctx, userID, pageSize, 0)
			if err != nil {
				return err
			}
			if len(sgs) == 0 {
				break
			}
			for _, sg := range sgs {
				if err := s.SuggestionsRepo.Delete(ctx, userID, sg.ID); err != nil && !errors.Is(err, suggestions.ErrNotFound) {
					return err
				}
			}
		}
	}

	if s.UsersRepo != nil {
		if err := s.UsersRepo.Delete(ctx, userID); err != nil && !errors.Is(err, users.ErrNotFound) {
			return err
		}
	}
	return nil
}

type guestDocClaimer interface {
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}

type guestAnalysisClaimer interface {
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}

func claimDocs(ctx context.Context, repo documents.DocumentsRepo, guestUserID, authedUserID string) (int, error) {
	if claimer, ok := repo.(guestDocClaimer); ok {
		return claimer.ClaimGuest(ctx, guestUserID, authedUserID)
	}
	return 0, errors.New("documents repo does not support claim")
}

func claimAnalyses(ctx context.Context, repo analyses.Repo, guestUserID, authedUserID string) (int, error) {
	if claimer, ok := repo.(guestAnalysisClaimer); ok {
		return claimer.ClaimGuest(ctx, guestUserID, authedUserID)
	}
	return 0, errors.New("analyses repo does not support claim")
}
