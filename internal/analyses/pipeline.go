package analyses

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"joel-backend/internal/analyses/queryplan"
	"joel-backend/internal/charts"
	"joel-backend/internal/extract"
	"joel-backend/internal/llm"
	"joel-backend/internal/render"
	"joel-backend/internal/reports"
	"joel-backend/internal/shared/metrics"
	"joel-backend/internal/shared/telemetry"
	"joel-backend/internal/tools"
)

// errStopped unwinds the pipeline after a terminal status was written.
var errStopped = errors.New("pipeline stopped")

const maxReportImages = 2

// Process runs the full analysis pipeline for one analysis. It first claims
// the row with an atomic pending-to-extracting compare-and-set, so the same
// analysis dispatched twice runs exactly once. Between stages it re-reads the
// row to honor cooperative cancellation and checks the overall deadline.
func (s *Service) Process(ctx context.Context, analysisID string) error {
	defer func() {
		if r := recover(); r != nil {
			s.failByID(ctx, analysisID, ErrorCodeAgentFailed, fmt.Errorf("panic: %v", r))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.analysisTimeout())
	defer cancel()

	startedAt := time.Now().UTC()
	claimed, err := s.Repo.Claim(ctx, analysisID, startedAt)
	if err != nil {
		return fmt.Errorf("claim analysis %s: %w", analysisID, err)
	}
	if !claimed {
		// Someone else owns the run, or it was already terminal.
		return nil
	}

	a, err := s.Repo.GetByID(ctx, analysisID)
	if err != nil {
		s.failByID(ctx, analysisID, ErrorCodeAgentFailed, fmt.Errorf("analysis lookup: %w", err))
		return err
	}

	metrics.IncAnalysisStarted()
	s.logTransition(ctx, a, StatusPending, StatusExtracting)
	s.appendLog(ctx, a.ID, "Processamento iniciado")

	if err := s.run(ctx, a, startedAt); err != nil {
		if errors.Is(err, errStopped) {
			return nil
		}
		return err
	}
	return nil
}

func (s *Service) run(ctx context.Context, a Analysis, startedAt time.Time) error {
	text, err := s.stageExtract(ctx, a)
	if err != nil {
		return err
	}

	plan, err := s.stageSearch(ctx, &a, text)
	if err != nil {
		return err
	}

	markdown, err := s.stageAnalyze(ctx, &a, text, plan)
	if err != nil {
		return err
	}

	if err := s.stageGenerate(ctx, &a, markdown, plan); err != nil {
		return err
	}

	completedAt := time.Now().UTC()
	if err := s.Repo.SetTerminal(ctx, a.ID, StatusCompleted, "", "", completedAt); err != nil {
		return fmt.Errorf("set completed: %w", err)
	}
	s.appendLog(ctx, a.ID, "Análise concluída")
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(float64(completedAt.Sub(startedAt).Milliseconds()))
	s.logTransition(ctx, a, a.Status, StatusCompleted)
	return nil
}

// stageExtract loads (extracting on demand) the text of every linked
// document. free_form analyses have no documents and skip the stage.
func (s *Service) stageExtract(ctx context.Context, a Analysis) (string, error) {
	if a.Mode == ModeFreeForm {
		s.appendLog(ctx, a.ID, "Análise livre: nenhum documento para extrair")
		return "", nil
	}

	docIDs := a.AllDocumentIDs()
	var parts []string
	for i, docID := range docIDs {
		doc, err := s.Docs.GetByID(ctx, a.UserID, docID)
		if err != nil {
			return "", s.fail(ctx, a, ErrorCodeExtractionFailed, fmt.Errorf("document lookup id=%s: %w", docID, err))
		}

		extractedKey := doc.ExtractedTextKey
		if extractedKey == "" {
			res, key, err := extract.ExtractText(ctx, s.Store, doc.StorageKey, doc.MimeType, doc.FileName)
			if err != nil {
				return "", s.fail(ctx, a, ErrorCodeExtractionFailed, fmt.Errorf("document %s mime %s: %w", doc.ID, doc.MimeType, err))
			}
			extractedKey = key
			if err := s.Docs.UpdateExtraction(ctx, doc.UserID, doc.ID, extractedKey, res.Method, len([]rune(res.Text)), time.Now().UTC()); err != nil {
				return "", s.fail(ctx, a, ErrorCodeExtractionFailed, fmt.Errorf("document %s: update extraction: %w", doc.ID, err))
			}
		}

		data, err := readObject(ctx, s.Store, extractedKey)
		if err != nil {
			return "", s.fail(ctx, a, ErrorCodeExtractionFailed, fmt.Errorf("document %s: load extracted text: %w", doc.ID, err))
		}

		if len(docIDs) > 1 {
			parts = append(parts, fmt.Sprintf("## Documento %d: %s\n\n%s", i+1, doc.FileName, string(data)))
		} else {
			parts = append(parts, string(data))
		}
	}

	combined := strings.TrimSpace(strings.Join(parts, "\n\n---\n\n"))
	if combined == "" {
		return "", s.fail(ctx, a, ErrorCodeExtractionFailed, errors.New("no text extracted from documents"))
	}
	s.appendLog(ctx, a.ID, fmt.Sprintf("Texto extraído: %d caracteres de %d documento(s)", len([]rune(combined)), len(docIDs)))
	return combined, nil
}

// stageSearch prepares the query plan. The searching status is only entered
// when market-reference search is enabled; the optimizer itself always runs
// since its action plan feeds the prompt either way.
func (s *Service) stageSearch(ctx context.Context, a *Analysis, text string) (queryplan.Plan, error) {
	if err := s.checkpoint(ctx, a); err != nil {
		return queryplan.Plan{}, err
	}

	if a.IncludeSearch {
		if err := s.advance(ctx, a, StatusSearching); err != nil {
			return queryplan.Plan{}, err
		}
		s.appendLog(ctx, a.ID, "Preparando plano de busca")
	}

	plan := queryplan.Optimize(queryplan.Request{
		Objective:     a.Objective,
		Area:          a.Area,
		Mode:          string(a.Mode),
		DocumentText:  text,
		Geolocation:   a.Geolocation,
		Language:      a.Language,
		SourceCount:   a.SourceCount,
		IncludeSearch: a.IncludeSearch,
	})
	for _, line := range plan.Log {
		s.appendLog(ctx, a.ID, "Otimizador: "+line)
	}
	return plan, nil
}

// stageAnalyze runs the agent with its own wall-clock timeout.
func (s *Service) stageAnalyze(ctx context.Context, a *Analysis, text string, plan queryplan.Plan) (string, error) {
	if err := s.checkpoint(ctx, a); err != nil {
		return "", err
	}
	if err := s.advance(ctx, a, StatusAnalyzing); err != nil {
		return "", err
	}
	s.appendLog(ctx, a.ID, "Analisando com o agente")

	if s.Agent == nil {
		return "", s.fail(ctx, *a, ErrorCodeAgentFailed, errors.New("missing agent"))
	}

	system := llm.BuildSystemPrompt(llm.PromptOptions{
		Language:         a.Language,
		Area:             a.Area,
		ReportType:       a.ReportType,
		Mode:             string(a.Mode),
		Geolocation:      a.Geolocation,
		MarketReferences: a.IncludeSearch,
		SourceCount:      a.SourceCount,
		IncludeImages:    a.IncludeImages,
	})
	user := llm.BuildUserPrompt(llm.UserPromptInput{
		Mode:         string(a.Mode),
		Objective:    a.Objective,
		Area:         a.Area,
		ReportType:   a.ReportType,
		Geolocation:  a.Geolocation,
		SearchScope:  a.SearchScope,
		SourceCount:  a.SourceCount,
		Text:         text,
		ActionPlanMD: plan.ActionPlanMD,
	})

	agent := newRetryingAgent(s.Agent, a.ID, requestIDFromContext(ctx))
	agentCtx, cancel := context.WithTimeout(ctx, s.agentTimeout())
	defer cancel()

	markdown, err := agent.Run(agentCtx, llm.RunInput{
		System: system,
		User:   user,
		Tools:  enabledTools(a.Area, plan, a.IncludeSearch, a.Mode),
	})
	if err != nil {
		code := ErrorCodeAgentFailed
		if errors.Is(err, context.DeadlineExceeded) {
			code = ErrorCodeAgentTimeout
		}
		return "", s.fail(ctx, *a, code, fmt.Errorf("agent run: %w", err))
	}
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return "", s.fail(ctx, *a, ErrorCodeAgentFailed, llm.ErrEmptyOutput)
	}
	s.appendLog(ctx, a.ID, fmt.Sprintf("Relatório gerado: %d caracteres", len([]rune(markdown))))
	return markdown, nil
}

// stageGenerate renders the report into every format and stores the result.
// Per-format failures are logged and the format is omitted; the analysis only
// fails here when the report row itself cannot be written.
func (s *Service) stageGenerate(ctx context.Context, a *Analysis, markdown string, plan queryplan.Plan) error {
	if err := s.checkpoint(ctx, a); err != nil {
		return err
	}
	if err := s.advance(ctx, a, StatusGenerating); err != nil {
		return err
	}
	s.appendLog(ctx, a.ID, "Gerando gráficos e arquivos do relatório")

	chartList := charts.Generate(markdown)
	if len(chartList) > 0 {
		s.appendLog(ctx, a.ID, fmt.Sprintf("Gráficos extraídos: %d", len(chartList)))
	}

	in := render.Input{
		Title:       reportTitle(markdown, a.Objective),
		Markdown:    markdown,
		Area:        a.Area,
		ReportType:  a.ReportType,
		GeneratedAt: time.Now().UTC(),
		Charts:      toRenderCharts(chartList),
		Images:      s.fetchImages(ctx, *a, plan),
	}

	fileKeys := map[string]string{}
	for _, format := range render.Formats {
		data, err := render.Render(format, in)
		if err != nil {
			s.appendLog(ctx, a.ID, fmt.Sprintf("Falha ao gerar formato %s (ignorado)", format))
			telemetry.Error("analysis.render_failed", map[string]any{
				"analysis_id": a.ID,
				"format":      format,
				"error":       sanitizeError(err),
			})
			continue
		}
		fileName := fmt.Sprintf("report-%s.%s", a.ID, format)
		key, _, _, err := s.Store.Save(ctx, a.UserID, fileName, bytes.NewReader(data))
		if err != nil {
			s.appendLog(ctx, a.ID, fmt.Sprintf("Falha ao salvar formato %s (ignorado)", format))
			telemetry.Error("analysis.render_store_failed", map[string]any{
				"analysis_id": a.ID,
				"format":      format,
				"error":       sanitizeError(err),
			})
			continue
		}
		fileKeys[format] = key
	}

	rep := reports.Report{
		ID:         uuid.NewString(),
		AnalysisID: a.ID,
		UserID:     a.UserID,
		Title:      in.Title,
		Markdown:   markdown,
		Area:       a.Area,
		ReportType: a.ReportType,
		Language:   a.Language,
		FileKeys:   fileKeys,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Reports.Create(ctx, rep); err != nil && !errors.Is(err, reports.ErrAlreadyExists) {
		return s.fail(ctx, *a, ErrorCodeAgentFailed, fmt.Errorf("store report: %w", err))
	}
	s.appendLog(ctx, a.ID, fmt.Sprintf("Relatório salvo em %d formato(s)", len(fileKeys)))
	return nil
}

// fetchImages collects optional illustrative images for the top focus topics.
// Every failure is silent; images never block a report.
func (s *Service) fetchImages(ctx context.Context, a Analysis, plan queryplan.Plan) []render.Figure {
	if !a.IncludeImages || s.Images == nil {
		return nil
	}
	var figures []render.Figure
	for _, topic := range plan.FocusTopics {
		if len(figures) >= maxReportImages {
			break
		}
		png, err := s.Images.Fetch(ctx, a.Area, topic)
		if err != nil || len(png) == 0 {
			continue
		}
		figures = append(figures, render.Figure{Title: topic, PNG: png})
	}
	return figures
}

// checkpoint re-reads the row between stages. It converts a requested cancel
// into the cancelled terminal status and an exceeded deadline into a timeout.
func (s *Service) checkpoint(ctx context.Context, a *Analysis) error {
	if ctx.Err() != nil {
		return s.fail(ctx, *a, ErrorCodeAgentTimeout, fmt.Errorf("analysis deadline: %w", ctx.Err()))
	}

	fresh, err := s.Repo.GetByID(context.WithoutCancel(ctx), a.ID)
	if err != nil {
		return s.fail(ctx, *a, ErrorCodeAgentFailed, fmt.Errorf("analysis re-read: %w", err))
	}
	*a = fresh

	if fresh.Status == StatusCancelled || fresh.CancelRequested {
		s.cancelTerminal(ctx, fresh)
		return errStopped
	}
	return nil
}

func (s *Service) advance(ctx context.Context, a *Analysis, status string) error {
	if err := s.Repo.UpdateStatus(ctx, a.ID, status); err != nil {
		return s.fail(ctx, *a, ErrorCodeAgentFailed, fmt.Errorf("set status %s: %w", status, err))
	}
	s.logTransition(ctx, *a, a.Status, status)
	a.Status = status
	return nil
}

func (s *Service) cancelTerminal(ctx context.Context, a Analysis) {
	completedAt := time.Now().UTC()
	if err := s.Repo.SetTerminal(context.WithoutCancel(ctx), a.ID, StatusCancelled, ErrorCodeCancelled, "", completedAt); err != nil {
		telemetry.Error("analysis.cancel_write_failed", map[string]any{
			"analysis_id": a.ID,
			"error":       sanitizeError(err),
		})
	}
	s.appendLog(ctx, a.ID, "Análise cancelada pelo usuário")
	s.logTransition(ctx, a, a.Status, StatusCancelled)
}

// fail writes the error terminal status and returns errStopped so callers
// unwind without double-reporting.
func (s *Service) fail(ctx context.Context, a Analysis, code string, err error) error {
	s.failByID(ctx, a.ID, code, err)
	s.logTransition(ctx, a, a.Status, StatusError)
	return errStopped
}

func (s *Service) failByID(ctx context.Context, analysisID, code string, err error) {
	completedAt := time.Now().UTC()
	msg := sanitizeError(err)
	ctx = context.WithoutCancel(ctx)
	if updateErr := s.Repo.SetTerminal(ctx, analysisID, StatusError, code, msg, completedAt); updateErr != nil {
		telemetry.Error("analysis.fail_write_failed", map[string]any{
			"analysis_id": analysisID,
			"error":       sanitizeError(updateErr),
			"cause":       msg,
		})
	}
	s.appendLog(ctx, analysisID, "Erro: "+UserMessage(code))
	metrics.IncAnalysisFailed()
}

func (s *Service) logTransition(ctx context.Context, a Analysis, from, to string) {
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           a.UserID,
		"analysis_id":       a.ID,
		"status":            to,
		"status_transition": from + "->" + to,
	})
}

// enabledTools merges the area defaults with the optimizer's overrides.
// Search tools are only exposed when search is enabled; free_form always
// searches since it has no document to lean on.
func enabledTools(area string, plan queryplan.Plan, includeSearch bool, mode Mode) []string {
	if !includeSearch && mode != ModeFreeForm {
		return nil
	}

	active := map[string]bool{queryplan.ToolWebSearch: true}
	for _, key := range tools.BaseToolsForArea(area) {
		active[key] = true
	}
	for key, on := range plan.ToolOverrides {
		active[key] = on
	}

	var out []string
	for _, key := range []string{queryplan.ToolWebSearch, queryplan.ToolPubMed, queryplan.ToolArxiv, queryplan.ToolFinance} {
		if active[key] {
			out = append(out, key)
		}
	}
	return out
}

func toRenderCharts(list []charts.Chart) []render.Chart {
	out := make([]render.Chart, 0, len(list))
	for _, c := range list {
		out = append(out, render.Chart{
			Title:  c.Title,
			Kind:   c.Kind,
			Labels: c.Labels,
			Values: c.Values,
			PNG:    c.PNG,
		})
	}
	return out
}

func reportTitle(markdown, objective string) string {
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
		}
	}
	obj := strings.TrimSpace(objective)
	if obj != "" {
		runes := []rune(obj)
		if len(runes) > 80 {
			return string(runes[:80])
		}
		return obj
	}
	return "Relatório de Análise"
}
