package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Darlington720/library-module/internal/dto"
	"github.com/Darlington720/library-module/internal/models"
	appErrors "github.com/Darlington720/library-module/pkg/errors"
)

func newCatalogRouter(h *CatalogHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(withSession(adminSession()))
	r.GET("/books", h.Books)
	r.GET("/borrowings", h.Borrowings)
	r.GET("/past-papers", h.PastPapers)
	r.GET("/fines", h.Fines)
	return r
}

func TestCatalogHandlerBooksPassesFilter(t *testing.T) {
	catalog := &stubCatalog{books: []models.Book{{ID: "bk-1", Title: "Go in Action"}}}
	r := newCatalogRouter(NewCatalogHandler(catalog, &stubFines{}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/books?q=go&status=available", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.BookFilter{Search: "go", Status: models.BookStatusAvailable}, catalog.bookFilter)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, float64(1), envelope.Meta["count"])
}

func TestCatalogHandlerBorrowingsInvalidStatus(t *testing.T) {
	catalog := &stubCatalog{err: appErrors.Clone(appErrors.ErrValidation, "unknown borrow status")}
	r := newCatalogRouter(NewCatalogHandler(catalog, &stubFines{}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/borrowings?status=late&student=2000101", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "2000101", catalog.loanFilter.StudentNumber)
}

func TestCatalogHandlerPastPapers(t *testing.T) {
	catalog := &stubCatalog{papers: []models.PastPaper{{Title: "Algorithms", Year: 2023}}}
	r := newCatalogRouter(NewCatalogHandler(catalog, &stubFines{}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/past-papers?q=CSC", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CSC", catalog.search)
}

func TestCatalogHandlerFines(t *testing.T) {
	fines := &stubFines{report: &dto.FinesReport{Count: 2, Total: decimal.NewFromInt(3000), Currency: "UGX"}}
	r := newCatalogRouter(NewCatalogHandler(&stubCatalog{}, fines))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fines", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":"3000"`)
}
