package suggestions

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"joel-backend/internal/shared/server/middleware"
	"joel-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches suggestion routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/suggestions", h.create)
	rg.GET("/suggestions", h.list)
	rg.DELETE("/suggestions/:id", h.remove)
}

type createRequest struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	sg, err := h.Svc.Create(c.Request.Context(), userID, req.Category, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "category must be one of feature, ux, integration, report, bug, other and message is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create suggestion", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(sg))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	sgs, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list suggestions", nil)
		return
	}

	resp := make([]gin.H, 0, len(sgs))
	for _, sg := range sgs {
		resp = append(resp, toResponse(sg))
	}
	respond.JSON(c, http.StatusOK, gin.H{"items": resp})
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "suggestion not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete suggestion", nil)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func toResponse(sg Suggestion) gin.H {
	return gin.H{
		"suggestionId": sg.ID,
		"category":     sg.Category,
		"message":      sg.Message,
		"status":       sg.Status,
		"createdAt":    sg.CreatedAt.Format(time.RFC3339),
	}
}
