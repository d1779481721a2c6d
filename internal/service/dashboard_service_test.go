package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Darlington720/library-module/internal/models"
	appErrors "github.com/Darlington720/library-module/pkg/errors"
)

type stubLibrary struct {
	books      []models.Book
	records    []models.BorrowRecord
	papers     []models.PastPaper
	err        error
	bookCalls  int
	loanCalls  int
	paperCalls int
}

func (s *stubLibrary) ListBooks(context.Context, string) ([]models.Book, error) {
	s.bookCalls++
	return s.books, s.err
}

func (s *stubLibrary) ListBorrowRecords(context.Context, string) ([]models.BorrowRecord, error) {
	s.loanCalls++
	return s.records, s.err
}

func (s *stubLibrary) ListPastPapers(context.Context, string) ([]models.PastPaper, error) {
	s.paperCalls++
	return s.papers, s.err
}

func dashboardLibrary() *stubLibrary {
	fine := int64(5000)
	return &stubLibrary{
		books: []models.Book{
			{ID: "1", Status: models.BookStatusAvailable},
			{ID: "2", Status: models.BookStatusBorrowed},
			{ID: "3", Status: models.BookStatusAvailable},
		},
		records: []models.BorrowRecord{
			{ID: "a", Status: models.BorrowStatusActive},
			{ID: "b", Status: models.BorrowStatusOverdue},
			{ID: "c", Status: models.BorrowStatusOverdue, Fine: &fine},
			{ID: "d", Status: models.BorrowStatusReturned},
		},
	}
}

func TestDashboardSummaryComposesCounters(t *testing.T) {
	lister := &stubCandidates{candidates: exportCandidates()}
	svc := NewDashboardService(lister, dashboardLibrary(), nil, DashboardServiceConfig{RecentLimit: 1}, nil)

	summary, hit, err := svc.Summary(context.Background(), testSession())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, summary.TotalBooks)
	assert.Equal(t, 2, summary.AvailableBooks)
	assert.Equal(t, 3, summary.ActiveBorrowings)
	assert.Equal(t, 2, summary.OverdueBorrowings)
	assert.Equal(t, int64(6000), summary.OutstandingFines)
	assert.Equal(t, models.ClearanceStats{Total: 2, Pending: 1, Approved: 1}, summary.Clearance)
	assert.Len(t, summary.RecentRequests, 1)
}

func TestDashboardSummaryUsesCache(t *testing.T) {
	library := dashboardLibrary()
	store := newMemoryCache()
	cache := NewCacheService(store, nil, time.Minute, nil, true)
	svc := NewDashboardService(&stubCandidates{candidates: exportCandidates()}, library, cache, DashboardServiceConfig{}, nil)

	_, hit, err := svc.Summary(context.Background(), testSession())
	require.NoError(t, err)
	assert.False(t, hit)

	summary, hit, err := svc.Summary(context.Background(), testSession())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 3, summary.TotalBooks)
	assert.Equal(t, 1, library.bookCalls)

	svc.InvalidateDashboard(context.Background())
	assert.Contains(t, store.deleted, CacheKey("dashboard", "admin-1"))

	_, hit, err = svc.Summary(context.Background(), testSession())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, library.bookCalls)
}

func TestDashboardSummaryPropagatesErrors(t *testing.T) {
	library := dashboardLibrary()
	library.err = appErrors.ErrUpstream
	svc := NewDashboardService(&stubCandidates{}, library, nil, DashboardServiceConfig{}, nil)

	_, _, err := svc.Summary(context.Background(), testSession())
	assert.True(t, appErrors.Is(err, appErrors.ErrUpstream))

	_, _, err = svc.Summary(context.Background(), nil)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}
