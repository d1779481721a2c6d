package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Darlington720/library-module/internal/dto"
	"github.com/Darlington720/library-module/internal/models"
	"github.com/Darlington720/library-module/internal/service"
	appErrors "github.com/Darlington720/library-module/pkg/errors"
)

func newClearanceRouter(h *ClearanceHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(withSession(adminSession()))
	r.GET("/clearances", h.List)
	r.GET("/clearances/stats", h.Stats)
	r.GET("/clearances/export", h.Export)
	r.GET("/clearances/:id", h.Detail)
	r.POST("/clearances/:id/approve", h.Approve)
	r.POST("/clearances/:id/reject", h.Reject)
	r.POST("/clearances/:id/override", h.Override)
	return r
}

func TestClearanceHandlerListCarriesStats(t *testing.T) {
	svc := &stubClearance{overview: &dto.ClearanceListResponse{
		Query:      "smith",
		Candidates: []models.Candidate{{Clearance: models.ClearanceRequest{ClearanceKey: "S-1"}}},
		Stats:      models.ClearanceStats{Total: 1, Pending: 1},
	}}
	r := newClearanceRouter(NewClearanceHandler(svc, nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clearances?q=+smith+", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "smith", svc.query)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 1)
	stats := envelope.Meta["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["pending"])
}

func TestClearanceHandlerDetailReportsCanApprove(t *testing.T) {
	svc := &stubClearance{detail: pendingDetail()}
	r := newClearanceRouter(NewClearanceHandler(svc, nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clearances/S-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, true, envelope.Meta["can_approve"])
}

func TestClearanceHandlerDetailNotFound(t *testing.T) {
	svc := &stubClearance{detailErr: appErrors.ErrNotFound}
	r := newClearanceRouter(NewClearanceHandler(svc, nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clearances/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClearanceHandlerRejectPassesReason(t *testing.T) {
	svc := &stubClearance{}
	r := newClearanceRouter(NewClearanceHandler(svc, nil))

	req := httptest.NewRequest(http.MethodPost, "/clearances/S-1/reject", strings.NewReader(`{"reason":"missing thesis copy"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"reject:S-1"}, svc.calls)
	assert.Equal(t, []string{"missing thesis copy"}, svc.reasons)
}

func TestClearanceHandlerApproveWithoutBody(t *testing.T) {
	svc := &stubClearance{}
	r := newClearanceRouter(NewClearanceHandler(svc, nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/clearances/S-1/approve", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"approve:S-1"}, svc.calls)
}

func TestClearanceHandlerErrorsCarryKind(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"validation", appErrors.Clone(appErrors.ErrValidation, "Cannot Approve"), http.StatusBadRequest, "validation"},
		{"in progress", appErrors.ErrActionInProgress, http.StatusConflict, "conflict"},
		{"upstream", appErrors.ErrUpstream, http.StatusBadGateway, "network"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubClearance{actionErr: tc.err}
			r := newClearanceRouter(NewClearanceHandler(svc, nil))

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/clearances/S-1/approve", nil))

			assert.Equal(t, tc.status, rec.Code)
			var envelope responseEnvelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
			assert.Equal(t, tc.kind, envelope.Meta["kind"])
		})
	}
}

func TestClearanceHandlerExport(t *testing.T) {
	exporter := &stubExporter{file: &service.ExportFile{
		Filename:    "clearance_report_20240601_101500.csv",
		ContentType: "text/csv",
		Body:        []byte("Student No.\n"),
	}}
	r := newClearanceRouter(NewClearanceHandler(&stubClearance{}, exporter))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clearances/export?format=csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", exporter.format)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "clearance_report_20240601_101500.csv")
	assert.Equal(t, "Student No.\n", rec.Body.String())
}

func TestClearanceHandlerExportInvalidFormat(t *testing.T) {
	exporter := &stubExporter{err: appErrors.Clone(appErrors.ErrValidation, "unsupported export format")}
	r := newClearanceRouter(NewClearanceHandler(&stubClearance{}, exporter))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clearances/export?format=docx", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
