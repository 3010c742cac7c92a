package analyses_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"joel-backend/internal/analyses"
)

func newTestRouter(t *testing.T, f *fixture) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "u1")
		c.Next()
	})
	h := analyses.NewHandler(f.svc)
	h.RegisterRoutes(router.Group("/api"))
	return router
}

func TestHandlerCreateValidation(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(t, f)

	body := `{"mode":"free_form"}`
	req := httptest.NewRequest(http.MethodPost, "/api/analyses", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestHandlerCreateAndStatus(t *testing.T) {
	f := newFixture(t)
	f.addDocument(t, "u1", "doc1", "Texto do documento para análise.")
	router := newTestRouter(t, f)

	body := `{"mode":"document","objective":"Avaliar desempenho","area":"financeiro","documentIds":["doc1"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/analyses", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		AnalysisID string `json:"analysisId"`
		Status     string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.AnalysisID == "" {
		t.Fatalf("expected analysisId")
	}
	if created.Status != analyses.StatusPending {
		t.Fatalf("expected pending, got %s", created.Status)
	}

	f.waitForTerminal(t, created.AnalysisID)

	reqStatus := httptest.NewRequest(http.MethodGet, "/api/analyses/"+created.AnalysisID+"/status", nil)
	respStatus := httptest.NewRecorder()
	router.ServeHTTP(respStatus, reqStatus)
	if respStatus.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", respStatus.Code, respStatus.Body.String())
	}
	var status struct {
		Status   string   `json:"status"`
		Progress int      `json:"progress"`
		Log      []string `json:"log"`
	}
	if err := json.NewDecoder(respStatus.Body).Decode(&status); err != nil {
		t.Fatalf("decode status response: %v", err)
	}
	if status.Status != analyses.StatusCompleted {
		t.Fatalf("expected completed, got %s", status.Status)
	}
	if status.Progress != 100 {
		t.Fatalf("expected progress 100, got %d", status.Progress)
	}
	if len(status.Log) == 0 {
		t.Fatalf("expected log lines")
	}
}

func TestHandlerStatusPollLimit(t *testing.T) {
	f := newFixture(t)
	f.addDocument(t, "u1", "doc1", "Texto.")
	a := f.pendingAnalysis(t, "u1", "doc1")
	router := newTestRouter(t, f)

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/analyses/"+a.ID+"/status", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first poll: expected 200, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/analyses/"+a.ID+"/status", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second poll: expected 429, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestHandlerReportAndDownload(t *testing.T) {
	f := newFixture(t)
	f.addDocument(t, "u1", "doc1", "Texto do documento.")
	a := f.pendingAnalysis(t, "u1", "doc1")
	if err := f.svc.Process(context.Background(), a.ID); err != nil {
		t.Fatalf("process: %v", err)
	}
	router := newTestRouter(t, f)

	respReport := httptest.NewRecorder()
	router.ServeHTTP(respReport, httptest.NewRequest(http.MethodGet, "/api/analyses/"+a.ID+"/report", nil))
	if respReport.Code != http.StatusOK {
		t.Fatalf("report: expected 200, got %d: %s", respReport.Code, respReport.Body.String())
	}
	var rep struct {
		Markdown string   `json:"markdown"`
		HTML     string   `json:"html"`
		Formats  []string `json:"formats"`
	}
	if err := json.NewDecoder(respReport.Body).Decode(&rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if rep.Markdown == "" {
		t.Fatalf("expected markdown")
	}
	if !strings.Contains(rep.HTML, "<html") {
		t.Fatalf("expected rendered html page")
	}
	if len(rep.Formats) == 0 {
		t.Fatalf("expected available formats")
	}

	respDl := httptest.NewRecorder()
	router.ServeHTTP(respDl, httptest.NewRequest(http.MethodGet, "/api/analyses/"+a.ID+"/report/download?format=txt", nil))
	if respDl.Code != http.StatusOK {
		t.Fatalf("download: expected 200, got %d", respDl.Code)
	}
	if got := respDl.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/plain") {
		t.Fatalf("unexpected content type %s", got)
	}
	if !strings.Contains(respDl.Header().Get("Content-Disposition"), "attachment") {
		t.Fatalf("expected attachment disposition")
	}

	respBad := httptest.NewRecorder()
	router.ServeHTTP(respBad, httptest.NewRequest(http.MethodGet, "/api/analyses/"+a.ID+"/report/download?format=exe", nil))
	if respBad.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported format, got %d", respBad.Code)
	}
}

func TestHandlerCancelPending(t *testing.T) {
	f := newFixture(t)
	f.addDocument(t, "u1", "doc1", "Texto.")
	a := f.pendingAnalysis(t, "u1", "doc1")
	router := newTestRouter(t, f)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/analyses/"+a.ID+"/cancel", nil))
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.Code)
	}

	if err := f.svc.Process(context.Background(), a.ID); err != nil {
		t.Fatalf("process: %v", err)
	}
	got, err := f.repo.GetByID(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("get analysis: %v", err)
	}
	if got.Status != analyses.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", got.Status)
	}
}
