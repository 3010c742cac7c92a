package analyses

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"joel-backend/internal/shared/server/middleware"
	"joel-backend/internal/shared/server/respond"
	"joel-backend/internal/usage"
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc         *Service
	pollLimiter *pollLimiter
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{
		Svc:         svc,
		pollLimiter: newPollLimiter(pollLimitWindow, nil),
	}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses", h.create)
	rg.GET("/analyses", h.list)
	rg.GET("/analyses/:id", h.get)
	rg.GET("/analyses/:id/status", h.status)
	rg.POST("/analyses/:id/cancel", h.cancel)
	rg.POST("/analyses/:id/retry", h.retry)
	rg.DELETE("/analyses/:id", h.remove)
	rg.GET("/analyses/:id/report", h.report)
	rg.GET("/analyses/:id/report/download", h.download)
}

type createRequest struct {
	Mode          string   `json:"mode"`
	Objective     string   `json:"objective"`
	Area          string   `json:"area"`
	ReportType    string   `json:"reportType"`
	Language      string   `json:"language"`
	Geolocation   string   `json:"geolocation"`
	SearchScope   string   `json:"searchScope"`
	SourceCount   int      `json:"sourceCount"`
	IncludeSearch bool     `json:"includeSearch"`
	IncludeImages bool     `json:"includeImages"`
	DocumentIDs   []string `json:"documentIds"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	analysis, err := h.Svc.Start(c.Request.Context(), userID, CreateInput{
		Mode:          req.Mode,
		Objective:     req.Objective,
		Area:          req.Area,
		ReportType:    req.ReportType,
		Language:      req.Language,
		Geolocation:   req.Geolocation,
		SearchScope:   req.SearchScope,
		SourceCount:   req.SourceCount,
		IncludeSearch: req.IncludeSearch,
		IncludeImages: req.IncludeImages,
		DocumentIDs:   req.DocumentIDs,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, usage.ErrLimitReached):
			respond.Error(c, http.StatusTooManyRequests, "limit_reached", "Você atingiu o limite de análises do mês. Tente novamente no próximo período.", []map[string]string{
				{"field": "usage", "issue": "limit_reached"},
			})
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start analysis", nil)
		}
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"analysisId": analysis.ID,
		"status":     analysis.Status,
	})
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := parseQueryInt(c, "limit", 20)
	offset := parseQueryInt(c, "offset", 0)

	analyses, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list analyses", nil)
		return
	}

	resp := make([]gin.H, 0, len(analyses))
	for _, a := range analyses {
		resp = append(resp, gin.H{
			"analysisId": a.ID,
			"mode":       a.Mode,
			"objective":  a.Objective,
			"area":       a.Area,
			"reportType": a.ReportType,
			"status":     a.Status,
			"createdAt":  a.CreatedAt,
		})
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	analysis, ok := h.lookup(c, userID)
	if !ok {
		return
	}
	respond.JSON(c, http.StatusOK, analysis)
}

func (h *Handler) status(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	analysisID := c.Param("id")

	if !h.pollLimiter.Allow(userID, analysisID) {
		c.Header("Retry-After", strconv.Itoa(h.pollLimiter.RetryAfterSeconds()))
		respond.Error(c, http.StatusTooManyRequests, "poll_too_fast", "status polled too frequently", nil)
		return
	}

	analysis, ok := h.lookup(c, userID)
	if !ok {
		return
	}

	resp := gin.H{
		"status":   analysis.Status,
		"progress": Progress(analysis.Status),
		"log":      formatLog(analysis.Log),
	}
	if analysis.Status == StatusError {
		resp["error"] = gin.H{
			"code":    analysis.ErrorCode,
			"message": UserMessage(analysis.ErrorCode),
		}
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) cancel(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	err := h.Svc.Cancel(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		case errors.Is(err, ErrNotCancellable):
			respond.Error(c, http.StatusConflict, "not_cancellable", "analysis already finished", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to cancel analysis", nil)
		}
		return
	}
	respond.JSON(c, http.StatusAccepted, gin.H{"status": "cancelling"})
}

func (h *Handler) retry(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	analysis, err := h.Svc.Retry(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		case errors.Is(err, ErrNotRetryable):
			respond.Error(c, http.StatusConflict, "not_retryable", "only failed or cancelled analyses can be retried", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to retry analysis", nil)
		}
		return
	}
	respond.JSON(c, http.StatusAccepted, gin.H{
		"analysisId": analysis.ID,
		"status":     analysis.Status,
	})
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete analysis", nil)
		}
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) report(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	rep, html, err := h.Svc.Report(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "report not found", nil)
		case errors.Is(err, ErrReportNotReady):
			respond.Error(c, http.StatusConflict, "not_ready", "analysis has not completed", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch report", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"analysisId": rep.AnalysisID,
		"title":      rep.Title,
		"markdown":   rep.Markdown,
		"html":       html,
		"formats":    rep.Formats([]string{"pdf", "docx", "xlsx", "txt", "html"}),
		"createdAt":  rep.CreatedAt,
	})
}

func (h *Handler) download(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	format := c.Query("format")

	body, contentType, fileName, err := h.Svc.Download(c.Request.Context(), userID, c.Param("id"), format)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "unsupported format", nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "file not available for this format", nil)
		case errors.Is(err, ErrReportNotReady):
			respond.Error(c, http.StatusConflict, "not_ready", "analysis has not completed", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to download report", nil)
		}
		return
	}
	defer body.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, body); err != nil {
		_ = c.Error(err)
	}
}

// lookup fetches the analysis for the authenticated user, writing the error
// response itself. The second return is false when a response was written.
func (h *Handler) lookup(c *gin.Context, userID string) (Analysis, bool) {
	analysisID := c.Param("id")
	if analysisID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "analysis id is required", nil)
		return Analysis{}, false
	}
	analysis, err := h.Svc.Get(c.Request.Context(), userID, analysisID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		}
		return Analysis{}, false
	}
	return analysis, true
}

func formatLog(lines []LogLine) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.At.Format("2006-01-02 15:04:05")+" "+l.Message)
	}
	return out
}

func parseQueryInt(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}
