package account

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"joel-backend/internal/analyses"
	"joel-backend/internal/documents"
	"joel-backend/internal/reports"
	"joel-backend/internal/suggestions"
	"joel-backend/internal/users"
)

func newTestRouter(t *testing.T, svc *Service, userID string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Set("isGuest", false)
		c.Next()
	})
	api := router.Group("/api")
	NewHandler(svc).RegisterRoutes(api)
	return router
}

func TestClaimGuestMigratesData(t *testing.T) {
	docRepo := documents.NewMemoryRepo()
	analysisRepo := analyses.NewMemoryRepo()
	svc := NewService(docRepo, analysisRepo, reports.NewMemoryRepo(), suggestions.NewMemoryRepo(), users.NewMemoryRepo())

	ctx := context.Background()
	guestID := "a4f7e7ce-2f5d-4a63-9ce1-0cc0f6e6b0aa"
	guestUserID := "guest:" + guestID

	if err := docRepo.Create(ctx, documents.Document{ID: "d1", UserID: guestUserID, FileName: "edital.pdf", CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("create document: %v", err)
	}
	if err := analysisRepo.Create(ctx, analyses.Analysis{ID: "a1", UserID: guestUserID, Mode: analyses.ModeDocument, Status: analyses.StatusCompleted, CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("create analysis: %v", err)
	}

	router := newTestRouter(t, svc, "user-1")
	req := httptest.NewRequest(http.MethodPost, "/api/account/claim-guest", nil)
	req.Header.Set("X-Guest-Id", guestID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if _, err := docRepo.GetByID(ctx, "user-1", "d1"); err != nil {
		t.Fatalf("document not migrated: %v", err)
	}
	got, err := analysisRepo.GetByID(ctx, "a1")
	if err != nil {
		t.Fatalf("analysis missing: %v", err)
	}
	if got.UserID != "user-1" {
		t.Fatalf("analysis not migrated, owner %q", got.UserID)
	}
}

func TestClaimGuestRequiresHeader(t *testing.T) {
	svc := NewService(documents.NewMemoryRepo(), analyses.NewMemoryRepo(), reports.NewMemoryRepo(), suggestions.NewMemoryRepo(), users.NewMemoryRepo())
	router := newTestRouter(t, svc, "user-1")

	req := httptest.NewRequest(http.MethodPost, "/api/account/claim-guest", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestDeleteAccountRemovesOwnedData(t *testing.T) {
	docRepo := documents.NewMemoryRepo()
	analysisRepo := analyses.NewMemoryRepo()
	reportsRepo := reports.NewMemoryRepo()
	suggestionsRepo := suggestions.NewMemoryRepo()
	usersRepo := users.NewMemoryRepo()
	svc := NewService(docRepo, analysisRepo, reportsRepo, suggestionsRepo, usersRepo)

	ctx := context.Background()
	now := time.Now().UTC()
	if err := usersRepo.Upsert(ctx, users.User{ID: "user-1", Email: "u@example.com"}); err != nil {
		t.Fatalf("upsert user: %v", err)
	}
	if err := docRepo.Create(ctx, documents.Document{ID: "d1", UserID: "user-1", FileName: "plano.pdf", CreatedAt: now}); err != nil {
		t.Fatalf("create document: %v", err)
	}
	if err := analysisRepo.Create(ctx, analyses.Analysis{ID: "a1", UserID: "user-1", Mode: analyses.ModeDocument, Status: analyses.StatusCompleted, CreatedAt: now}); err != nil {
		t.Fatalf("create analysis: %v", err)
	}
	if err := reportsRepo.Create(ctx, reports.Report{ID: "r1", AnalysisID: "a1", UserID: "user-1", Markdown: "# x", CreatedAt: now}); err != nil {
		t.Fatalf("create report: %v", err)
	}
	if err := suggestionsRepo.Create(ctx, suggestions.Suggestion{ID: "s1", UserID: "user-1", Category: "bug", Message: "m", Status: suggestions.StatusNew, CreatedAt: now}); err != nil {
		t.Fatalf("create suggestion: %v", err)
	}

	router := newTestRouter(t, svc, "user-1")
	req := httptest.NewRequest(http.MethodDelete, "/api/account", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}

	if _, err := usersRepo.GetByID(ctx, "user-1"); err == nil {
		t.Fatal("user row should be gone")
	}
	if docs, _ := docRepo.ListByUser(ctx, "user-1", 10, 0); len(docs) != 0 {
		t.Fatalf("documents remain: %d", len(docs))
	}
	if list, _ := analysisRepo.ListByUser(ctx, "user-1", 10, 0); len(list) != 0 {
		t.Fatalf("analyses remain: %d", len(list))
	}
	if _, err := reportsRepo.GetByAnalysis(ctx, "user-1", "a1"); err == nil {
		t.Fatal("report should be gone")
	}
	if sgs, _ := suggestionsRepo.ListByUser(ctx, "user-1", 10, 0); len(sgs) != 0 {
		t.Fatalf("suggestions remain: %d", len(sgs))
	}
}
