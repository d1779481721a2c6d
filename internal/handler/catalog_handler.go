package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Darlington720/library-module/internal/dto"
	"github.com/Darlington720/library-module/internal/models"
	"github.com/Darlington720/library-module/pkg/response"
)

type catalogService interface {
	Books(ctx context.Context, session *models.Session, filter models.BookFilter) ([]models.Book, error)
	Borrowings(ctx context.Context, session *models.Session, filter models.BorrowFilter) ([]models.BorrowRecord, error)
	PastPapers(ctx context.Context, session *models.Session, search string) ([]models.PastPaper, error)
}

type finesService interface {
	Report(ctx context.Context, session *models.Session) (*dto.FinesReport, error)
}

// CatalogHandler exposes the read-only library listings.
type CatalogHandler struct {
	catalog catalogService
	fines   finesService
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(catalog catalogService, fines finesService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, fines: fines}
}

// Books godoc
// @Summary List books
// @Tags Library
// @Produce json
// @Param q query string false "Search title, author, ISBN or category"
// @Param status query string false "available, borrowed, damaged or lost"
// @Success 200 {object} response.Envelope
// @Router /books [get]
func (h *CatalogHandler) Books(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	books, err := h.catalog.Books(c.Request.Context(), session, models.BookFilter{
		Search: queryParam(c, "q"),
		Status: models.BookStatus(queryParam(c, "status")),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, books, nil, map[string]interface{}{"count": len(books)})
}

// Borrowings godoc
// @Summary List borrowing records
// @Tags Library
// @Produce json
// @Param status query string false "active, overdue or returned"
// @Param student query string false "Student number"
// @Success 200 {object} response.Envelope
// @Router /borrowings [get]
func (h *CatalogHandler) Borrowings(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	records, err := h.catalog.Borrowings(c.Request.Context(), session, models.BorrowFilter{
		Status:        models.BorrowStatus(queryParam(c, "status")),
		StudentNumber: queryParam(c, "student"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil, map[string]interface{}{"count": len(records)})
}

// PastPapers godoc
// @Summary List past papers
// @Tags Library
// @Produce json
// @Param q query string false "Search title or course code"
// @Success 200 {object} response.Envelope
// @Router /past-papers [get]
func (h *CatalogHandler) PastPapers(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	papers, err := h.catalog.PastPapers(c.Request.Context(), session, queryParam(c, "q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, papers, nil, map[string]interface{}{"count": len(papers)})
}

// Fines godoc
// @Summary Outstanding fines
// @Tags Library
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /fines [get]
func (h *CatalogHandler) Fines(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	report, err := h.fines.Report(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
