package analyses

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"joel-backend/internal/documents"
	"joel-backend/internal/llm"
	"joel-backend/internal/queue"
	"joel-backend/internal/render"
	"joel-backend/internal/reports"
	"joel-backend/internal/shared/storage/object"
	"joel-backend/internal/shared/telemetry"
	"joel-backend/internal/usage"
)

const (
	defaultAgentTimeout    = 90 * time.Second
	defaultAnalysisTimeout = 10 * time.Minute
	defaultSourceCount     = 3
	maxSourceCount         = 10
	maxObjectiveLen        = 2000
)

// ImageSource fetches one illustrative image for a topic. Implementations
// degrade to a decorative fallback rather than failing.
type ImageSource interface {
	Fetch(ctx context.Context, area, query string) ([]byte, error)
}

// Service contains business logic for analyses.
type Service struct {
	Repo    Repo
	Reports reports.ReportsRepo
	Docs    documents.DocumentsRepo
	Usage   *usage.Service
	Store   object.ObjectStore
	Agent   llm.Agent
	Queue   queue.Client // optional; nil runs the pipeline on a goroutine
	Images  ImageSource  // optional

	AgentTimeout    time.Duration
	AnalysisTimeout time.Duration
}

// CreateInput carries the analysis configuration from the create endpoint.
type CreateInput struct {
	Mode          string
	Objective     string
	Area          string
	ReportType    string
	Language      string
	Geolocation   string
	SearchScope   string
	SourceCount   int
	IncludeSearch bool
	IncludeImages bool
	DocumentIDs   []string
}

// Start validates the request, charges quota, creates the pending row and
// dispatches processing.
func (s *Service) Start(ctx context.Context, userID string, in CreateInput) (Analysis, error) {
	if userID == "" {
		return Analysis{}, errors.New("userID is required")
	}

	mode, err := ParseMode(in.Mode)
	if err != nil {
		return Analysis{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	objective := strings.TrimSpace(in.Objective)
	if len([]rune(objective)) > maxObjectiveLen {
		objective = string([]rune(objective)[:maxObjectiveLen])
	}
	if mode == ModeFreeForm && objective == "" {
		return Analysis{}, fmt.Errorf("%w: objective is required for free_form analyses", ErrInvalidInput)
	}

	docIDs := dedupeIDs(in.DocumentIDs)
	switch {
	case mode == ModeFreeForm && len(docIDs) > 0:
		return Analysis{}, fmt.Errorf("%w: free_form analyses take no documents", ErrInvalidInput)
	case mode == ModeMultiDocument && len(docIDs) < 2:
		return Analysis{}, fmt.Errorf("%w: multi_document analyses need at least two documents", ErrInvalidInput)
	case mode.RequiresDocument() && len(docIDs) == 0:
		return Analysis{}, fmt.Errorf("%w: at least one document is required", ErrInvalidInput)
	case (mode == ModeDocument || mode == ModeEnhancement) && len(docIDs) > 1:
		return Analysis{}, fmt.Errorf("%w: this mode takes a single document", ErrInvalidInput)
	}

	for _, docID := range docIDs {
		if _, err := s.Docs.GetByID(ctx, userID, docID); err != nil {
			if errors.Is(err, documents.ErrNotFound) {
				return Analysis{}, fmt.Errorf("%w: document %s not found", ErrInvalidInput, docID)
			}
			return Analysis{}, err
		}
	}

	sourceCount := in.SourceCount
	if sourceCount <= 0 {
		sourceCount = defaultSourceCount
	}
	if sourceCount > maxSourceCount {
		sourceCount = maxSourceCount
	}

	language := strings.TrimSpace(in.Language)
	if language == "" {
		language = llm.DefaultLanguage
	}
	reportType := strings.TrimSpace(in.ReportType)
	if reportType == "" {
		reportType = llm.DefaultReportType
	}
	if mode == ModeEnhancement {
		reportType = "enhancement"
	}

	if s.Usage != nil {
		ok, _, err := s.Usage.CanConsume(ctx, userID, 1)
		if err != nil {
			return Analysis{}, err
		}
		if !ok {
			return Analysis{}, usage.ErrLimitReached
		}
	}

	now := time.Now().UTC()
	analysis := Analysis{
		ID:            uuid.NewString(),
		UserID:        userID,
		Mode:          mode,
		Objective:     objective,
		Area:          strings.TrimSpace(in.Area),
		ReportType:    reportType,
		Language:      language,
		Geolocation:   strings.TrimSpace(in.Geolocation),
		SearchScope:   strings.TrimSpace(in.SearchScope),
		SourceCount:   sourceCount,
		IncludeSearch: in.IncludeSearch,
		IncludeImages: in.IncludeImages,
		Status:        StatusPending,
		Log:           []LogLine{{At: now, Message: "Análise criada"}},
		CreatedAt:     now,
	}
	if len(docIDs) > 0 {
		analysis.DocumentID = docIDs[0]
		analysis.DocumentIDs = docIDs[1:]
	}

	if err := s.Repo.Create(ctx, analysis); err != nil {
		return Analysis{}, err
	}

	if s.Usage != nil {
		if _, err := s.Usage.Consume(ctx, userID, 1); err != nil {
			return Analysis{}, err
		}
	}

	s.dispatch(ctx, analysis.ID)
	return analysis, nil
}

// dispatch enqueues the analysis when a queue is configured, otherwise runs
// the pipeline on a background goroutine. A failed enqueue falls back to the
// goroutine so the analysis never sits pending forever.
func (s *Service) dispatch(ctx context.Context, analysisID string) {
	if s.Queue != nil {
		msg := queue.Message{
			AnalysisID: analysisID,
			RequestID:  requestIDFromContext(ctx),
			EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
			Version:    1,
		}
		err := s.Queue.Send(ctx, msg)
		if err == nil {
			return
		}
		log.Printf("queue send failed, running in-process analysis_id=%s err=%s", analysisID, sanitizeError(err))
	}
	go func(ctx context.Context) {
		if err := s.Process(ctx, analysisID); err != nil {
			telemetry.Error("analysis.process_failed", map[string]any{
				"analysis_id": analysisID,
				"error":       sanitizeError(err),
			})
		}
	}(backgroundWithRequestID(ctx))
}

// Get returns an analysis owned by the user.
func (s *Service) Get(ctx context.Context, userID, analysisID string) (Analysis, error) {
	if analysisID == "" {
		return Analysis{}, fmt.Errorf("%w: analysisID is required", ErrInvalidInput)
	}
	a, err := s.Repo.GetByID(ctx, analysisID)
	if err != nil {
		return Analysis{}, err
	}
	if a.UserID != userID {
		return Analysis{}, ErrNotFound
	}
	return a, nil
}

// List returns analyses for a user, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Cancel flags an active analysis for cooperative cancellation. The pipeline
// observes the flag between stages; a stage already in flight finishes first.
func (s *Service) Cancel(ctx context.Context, userID, analysisID string) error {
	flagged, err := s.Repo.RequestCancel(ctx, userID, analysisID)
	if err != nil {
		return err
	}
	if !flagged {
		return ErrNotCancellable
	}
	s.appendLog(ctx, analysisID, "Cancelamento solicitado pelo usuário")
	return nil
}

// Retry resets an error or cancelled analysis to pending, discards any prior
// report and re-dispatches processing.
func (s *Service) Retry(ctx context.Context, userID, analysisID string) (Analysis, error) {
	// Reset first: it refuses non-retryable statuses, so a completed
	// analysis keeps its report when the retry is rejected.
	if err := s.Repo.ResetForRetry(ctx, userID, analysisID); err != nil {
		return Analysis{}, err
	}
	if err := s.Reports.DeleteByAnalysis(ctx, userID, analysisID); err != nil {
		return Analysis{}, err
	}
	s.appendLog(ctx, analysisID, "Nova tentativa solicitada")
	s.dispatch(ctx, analysisID)
	return s.Get(ctx, userID, analysisID)
}

// Delete removes an analysis and its report.
func (s *Service) Delete(ctx context.Context, userID, analysisID string) error {
	if err := s.Repo.Delete(ctx, userID, analysisID); err != nil {
		return err
	}
	return s.Reports.DeleteByAnalysis(ctx, userID, analysisID)
}

// Report returns the stored report for a completed analysis along with its
// rendered HTML, read back from the object store.
func (s *Service) Report(ctx context.Context, userID, analysisID string) (reports.Report, string, error) {
	a, err := s.Get(ctx, userID, analysisID)
	if err != nil {
		return reports.Report{}, "", err
	}
	if a.Status != StatusCompleted {
		return reports.Report{}, "", ErrReportNotReady
	}
	rep, err := s.Reports.GetByAnalysis(ctx, userID, analysisID)
	if err != nil {
		return reports.Report{}, "", err
	}

	html := ""
	if key := rep.FileKeys[render.FormatHTML]; key != "" {
		if data, err := readObject(ctx, s.Store, key); err == nil {
			html = string(data)
		}
	}
	return rep, html, nil
}

// Download opens the rendered file for a format.
func (s *Service) Download(ctx context.Context, userID, analysisID, format string) (io.ReadCloser, string, string, error) {
	if !render.Supported(format) {
		return nil, "", "", fmt.Errorf("%w: unsupported format %q", ErrInvalidInput, format)
	}
	rep, _, err := s.Report(ctx, userID, analysisID)
	if err != nil {
		return nil, "", "", err
	}
	key := rep.FileKeys[format]
	if key == "" {
		return nil, "", "", ErrNotFound
	}
	body, err := s.Store.Open(ctx, key)
	if err != nil {
		return nil, "", "", err
	}
	fileName := fmt.Sprintf("relatorio-%s.%s", analysisID, format)
	return body, render.ContentType(format), fileName, nil
}

func (s *Service) agentTimeout() time.Duration {
	if s.AgentTimeout > 0 {
		return s.AgentTimeout
	}
	return defaultAgentTimeout
}

func (s *Service) analysisTimeout() time.Duration {
	if s.AnalysisTimeout > 0 {
		return s.AnalysisTimeout
	}
	return defaultAnalysisTimeout
}

func (s *Service) appendLog(ctx context.Context, analysisID, message string) {
	line := LogLine{At: time.Now().UTC(), Message: message}
	if err := s.Repo.AppendLog(ctx, analysisID, line); err != nil {
		log.Printf("append log failed analysis_id=%s err=%v", analysisID, err)
	}
}

func dedupeIDs(ids []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}

func readObject(ctx context.Context, store object.ObjectStore, key string) ([]byte, error) {
	body, err := store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}
