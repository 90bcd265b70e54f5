package rest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dfryer1193/pagebot/api"
	"github.com/dfryer1193/pagebot/pages/domain"
	"github.com/gin-gonic/gin"
)

// PageService is the part of application.EditService the HTTP API exposes.
type PageService interface {
	UpdateElement(ctx context.Context, page string, element string, content string) domain.EditResult
	Rollback(ctx context.Context, page string, revision string) domain.EditResult
	GetHistory(ctx context.Context, page string, limit int) domain.HistoryResult
	Preview(ctx context.Context, page string, element string, content string) domain.PreviewResult
	AuditMarkers(ctx context.Context, page string) domain.AuditResult
	Pages() domain.PageAllowList
}

type PagesHandler struct {
	service PageService
}

func NewPagesHandler(service PageService) *PagesHandler {
	return &PagesHandler{service: service}
}

func (h *PagesHandler) ListPages(c *gin.Context) {
	c.JSON(http.StatusOK, api.PageList{
		Pages:      h.service.Pages(),
		Categories: domain.Categories,
	})
}

func (h *PagesHandler) UpdateElement(c *gin.Context) {
	update := &api.ElementUpdate{}
	if err := c.ShouldBindJSON(update); err != nil {
		badRequest(c, err)
		return
	}

	result := h.service.UpdateElement(c.Request.Context(), c.Param("page"), c.Param("element"), update.Content)
	respond(c, http.StatusOK, result, result.Failure)
}

func (h *PagesHandler) PreviewElement(c *gin.Context) {
	update := &api.ElementUpdate{}
	if err := c.ShouldBindJSON(update); err != nil {
		badRequest(c, err)
		return
	}

	result := h.service.Preview(c.Request.Context(), c.Param("page"), c.Param("element"), update.Content)
	respond(c, http.StatusOK, result, result.Failure)
}

func (h *PagesHandler) Rollback(c *gin.Context) {
	req := &api.RollbackRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		badRequest(c, err)
		return
	}

	result := h.service.Rollback(c.Request.Context(), c.Param("page"), req.Revision)
	respond(c, http.StatusOK, result, result.Failure)
}

func (h *PagesHandler) GetHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = n
	}

	result := h.service.GetHistory(c.Request.Context(), c.Param("page"), limit)
	respond(c, http.StatusOK, result, result.Failure)
}

func (h *PagesHandler) GetMarkers(c *gin.Context) {
	result := h.service.AuditMarkers(c.Request.Context(), c.Param("page"))
	respond(c, http.StatusOK, result, result.Failure)
}

func respond(c *gin.Context, status int, result any, failure *domain.Failure) {
	if failure != nil {
		c.JSON(statusForKind(failure.Kind), api.Error{Kind: string(failure.Kind), Error: failure.Reason})
		return
	}
	c.JSON(status, result)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, api.Error{Kind: string(domain.FailureInvalidInput), Error: err.Error()})
}

func statusForKind(kind domain.FailureKind) int {
	switch kind {
	case domain.FailureInvalidInput, domain.FailureValidation:
		return http.StatusBadRequest
	case domain.FailureNotFound, domain.FailureRegionNotFound:
		return http.StatusNotFound
	case domain.FailureConflict:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}
