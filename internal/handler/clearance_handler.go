package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Darlington720/library-module/internal/dto"
	"github.com/Darlington720/library-module/internal/models"
	"github.com/Darlington720/library-module/internal/service"
	appErrors "github.com/Darlington720/library-module/pkg/errors"
	"github.com/Darlington720/library-module/pkg/response"
)

type clearanceService interface {
	Overview(ctx context.Context, session *models.Session, query string) (*dto.ClearanceListResponse, error)
	Stats(ctx context.Context, session *models.Session) (models.ClearanceStats, error)
	Detail(ctx context.Context, session *models.Session, id string) (*dto.ClearanceDetail, error)
	Approve(ctx context.Context, session *models.Session, id string) (*dto.ClearanceDecisionResult, error)
	Reject(ctx context.Context, session *models.Session, id, reason string) (*dto.ClearanceDecisionResult, error)
	Override(ctx context.Context, session *models.Session, id, reason string) (*dto.ClearanceDecisionResult, error)
}

type reportExporter interface {
	ClearanceReport(ctx context.Context, session *models.Session, format, query string) (*service.ExportFile, error)
}

// ClearanceHandler exposes the graduation clearance workflow.
type ClearanceHandler struct {
	service  clearanceService
	exporter reportExporter
}

// NewClearanceHandler constructs the handler.
func NewClearanceHandler(service clearanceService, exporter reportExporter) *ClearanceHandler {
	return &ClearanceHandler{service: service, exporter: exporter}
}

// List godoc
// @Summary List clearance candidates
// @Description Always fetched from the library backend. The query matches registration number, student number or name.
// @Tags Clearance
// @Produce json
// @Param q query string false "Search query"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /clearances [get]
func (h *ClearanceHandler) List(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	overview, err := h.service.Overview(c.Request.Context(), session, queryParam(c, "q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := responseMeta(c)
	meta["stats"] = overview.Stats
	meta["query"] = overview.Query
	response.JSON(c, http.StatusOK, overview.Candidates, nil, meta)
}

// Stats godoc
// @Summary Clearance counts per status
// @Tags Clearance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /clearances/stats [get]
func (h *ClearanceHandler) Stats(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	stats, err := h.service.Stats(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Detail godoc
// @Summary Clearance detail
// @Description Candidate with borrow records, derived obligations, rejection history and any active override
// @Tags Clearance
// @Produce json
// @Param id path string true "Clearance ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /clearances/{id} [get]
func (h *ClearanceHandler) Detail(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	detail, err := h.service.Detail(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := responseMeta(c)
	meta["can_approve"] = detail.CanApprove()
	response.JSON(c, http.StatusOK, detail, nil, meta)
}

// Approve godoc
// @Summary Approve a clearance
// @Tags Clearance
// @Produce json
// @Param id path string true "Clearance ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /clearances/{id}/approve [post]
func (h *ClearanceHandler) Approve(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	result, err := h.service.Approve(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Reject godoc
// @Summary Reject a clearance
// @Tags Clearance
// @Accept json
// @Produce json
// @Param id path string true "Clearance ID"
// @Param payload body dto.ClearanceDecisionRequest true "Rejection reason"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /clearances/{id}/reject [post]
func (h *ClearanceHandler) Reject(c *gin.Context) {
	h.withReason(c, h.service.Reject)
}

// Override godoc
// @Summary Override a clearance
// @Description Approve regardless of outstanding obligations. The reason is kept in the override ledger.
// @Tags Clearance
// @Accept json
// @Produce json
// @Param id path string true "Clearance ID"
// @Param payload body dto.ClearanceDecisionRequest true "Override reason"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /clearances/{id}/override [post]
func (h *ClearanceHandler) Override(c *gin.Context) {
	h.withReason(c, h.service.Override)
}

type reasonAction func(ctx context.Context, session *models.Session, id, reason string) (*dto.ClearanceDecisionResult, error)

func (h *ClearanceHandler) withReason(c *gin.Context, action reasonAction) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req dto.ClearanceDecisionRequest
	if err := bindOptional(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	result, err := action(c.Request.Context(), session, c.Param("id"), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Export godoc
// @Summary Export the clearance report
// @Tags Clearance
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv, pdf or xlsx"
// @Param q query string false "Search query"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /clearances/export [get]
func (h *ClearanceHandler) Export(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	if h.exporter == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	file, err := h.exporter.ClearanceReport(c.Request.Context(), session, queryParam(c, "format"), queryParam(c, "q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
