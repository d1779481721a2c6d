package handler

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Darlington720/library-module/internal/dto"
	"github.com/Darlington720/library-module/internal/middleware"
	"github.com/Darlington720/library-module/internal/models"
	"github.com/Darlington720/library-module/internal/service"
	"github.com/Darlington720/library-module/pkg/config"
)

type responseEnvelope struct {
	Data  interface{}            `json:"data"`
	Error map[string]interface{} `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func testConfig() *config.Config {
	return &config.Config{
		Session: config.SessionConfig{CookieName: "library_session", CookieMaxAge: time.Hour, LoginURL: "https://auth.example/login"},
		UI:      config.UIConfig{ThemeStorageKey: "nkumba-theme", DefaultTheme: "light"},
		Clearance: config.ClearanceConfig{
			Currency:           "UGX",
			DefaultOverdueFine: 1000,
		},
	}
}

func adminSession() *models.Session {
	return &models.Session{
		Token:   "token-1",
		Profile: models.Profile{UserID: "admin-1", Surname: "Admin", OtherNames: "Library"},
	}
}

func withSession(session *models.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		if session != nil {
			c.Set(middleware.ContextSessionKey, session)
		}
		c.Next()
	}
}

type stubSessions struct {
	session *models.Session
	err     error
	tokens  []string
	ended   []string
}

func (s *stubSessions) Start(_ context.Context, req dto.StartSessionRequest, _, _ string) (*models.Session, error) {
	s.tokens = append(s.tokens, req.Token)
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

func (s *stubSessions) End(_ context.Context, token string) {
	s.ended = append(s.ended, token)
}

type stubDashboard struct {
	summary *dto.DashboardSummary
	hit     bool
	err     error
}

func (s *stubDashboard) Summary(context.Context, *models.Session) (*dto.DashboardSummary, bool, error) {
	return s.summary, s.hit, s.err
}

type stubCatalog struct {
	books      []models.Book
	records    []models.BorrowRecord
	papers     []models.PastPaper
	err        error
	bookFilter models.BookFilter
	loanFilter models.BorrowFilter
	search     string
}

func (s *stubCatalog) Books(_ context.Context, _ *models.Session, filter models.BookFilter) ([]models.Book, error) {
	s.bookFilter = filter
	return s.books, s.err
}

func (s *stubCatalog) Borrowings(_ context.Context, _ *models.Session, filter models.BorrowFilter) ([]models.BorrowRecord, error) {
	s.loanFilter = filter
	return s.records, s.err
}

func (s *stubCatalog) PastPapers(_ context.Context, _ *models.Session, search string) ([]models.PastPaper, error) {
	s.search = search
	return s.papers, s.err
}

type stubFines struct {
	report *dto.FinesReport
	err    error
}

func (s *stubFines) Report(context.Context, *models.Session) (*dto.FinesReport, error) {
	return s.report, s.err
}

type stubClearance struct {
	mu        sync.Mutex
	overview  *dto.ClearanceListResponse
	stats     models.ClearanceStats
	detail    *dto.ClearanceDetail
	detailErr error
	actionErr error
	query     string
	calls     []string
	reasons   []string
}

func (s *stubClearance) Overview(_ context.Context, _ *models.Session, query string) (*dto.ClearanceListResponse, error) {
	s.query = query
	if s.overview == nil {
		return &dto.ClearanceListResponse{Query: query}, nil
	}
	return s.overview, nil
}

func (s *stubClearance) Stats(context.Context, *models.Session) (models.ClearanceStats, error) {
	return s.stats, nil
}

func (s *stubClearance) Detail(context.Context, *models.Session, string) (*dto.ClearanceDetail, error) {
	return s.detail, s.detailErr
}

func (s *stubClearance) Approve(_ context.Context, _ *models.Session, id string) (*dto.ClearanceDecisionResult, error) {
	return s.decide(models.ClearanceActionApprove, id, "")
}

func (s *stubClearance) Reject(_ context.Context, _ *models.Session, id, reason string) (*dto.ClearanceDecisionResult, error) {
	return s.decide(models.ClearanceActionReject, id, reason)
}

func (s *stubClearance) Override(_ context.Context, _ *models.Session, id, reason string) (*dto.ClearanceDecisionResult, error) {
	return s.decide(models.ClearanceActionOverride, id, reason)
}

func (s *stubClearance) decide(action models.ClearanceAction, id, reason string) (*dto.ClearanceDecisionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, string(action)+":"+id)
	s.reasons = append(s.reasons, reason)
	if s.actionErr != nil {
		return nil, s.actionErr
	}
	return &dto.ClearanceDecisionResult{
		Action:  action,
		Title:   "Clearance Updated",
		Message: "Clearance " + string(action) + " recorded",
	}, nil
}

type stubExporter struct {
	file   *service.ExportFile
	err    error
	format string
}

func (s *stubExporter) ClearanceReport(_ context.Context, _ *models.Session, format, _ string) (*service.ExportFile, error) {
	s.format = format
	return s.file, s.err
}

func pendingDetail() *dto.ClearanceDetail {
	return &dto.ClearanceDetail{
		Candidate: models.Candidate{
			Clearance: models.ClearanceRequest{ID: "c-1", ClearanceKey: "S-1", Status: models.ClearanceStatusPending},
			Student:   models.Student{Surname: "Smith", OtherNames: "Jane", StudentNumber: "2000101"},
		},
	}
}
