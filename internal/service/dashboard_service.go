package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Darlington720/library-module/internal/dto"
	"github.com/Darlington720/library-module/internal/models"
	appErrors "github.com/Darlington720/library-module/pkg/errors"
)

type candidateLister interface {
	List(ctx context.Context, session *models.Session, query string) ([]models.Candidate, error)
}

type libraryReader interface {
	ListBooks(ctx context.Context, token string) ([]models.Book, error)
	ListBorrowRecords(ctx context.Context, token string) ([]models.BorrowRecord, error)
	ListPastPapers(ctx context.Context, token string) ([]models.PastPaper, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL     time.Duration
	RecentLimit  int
	FineRule     FineRule
	DisableCache bool
}

// DashboardService composes the landing page counters.
type DashboardService struct {
	clearances candidateLister
	library    libraryReader
	cache      *CacheService
	logger     *zap.Logger
	now        func() time.Time
	cfg        DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(clearances candidateLister, library libraryReader, cache *CacheService, cfg DashboardServiceConfig, logger *zap.Logger) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 5
	}
	if cfg.FineRule == (FineRule{}) {
		cfg.FineRule = DefaultFineRule()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		clearances: clearances,
		library:    library,
		cache:      cache,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
		cfg:        cfg,
	}
}

// Summary returns the dashboard counters for the session and indicates cache utilisation.
func (s *DashboardService) Summary(ctx context.Context, session *models.Session) (*dto.DashboardSummary, bool, error) {
	if session == nil {
		return nil, false, appErrors.ErrUnauthorized
	}
	cacheKey := CacheKey("dashboard", session.Actor())
	if summary, hit := s.tryCache(ctx, cacheKey); hit {
		return summary, true, nil
	}

	summary, err := s.compose(ctx, session)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, cacheKey, summary)
	return summary, false, nil
}

// InvalidatorFunc adapts a function to the dashboard invalidation hook.
type InvalidatorFunc func(ctx context.Context)

// InvalidateDashboard calls f.
func (f InvalidatorFunc) InvalidateDashboard(ctx context.Context) {
	if f != nil {
		f(ctx)
	}
}

// InvalidateDashboard drops every cached summary.
func (s *DashboardService) InvalidateDashboard(ctx context.Context) {
	if s.cache == nil || s.cfg.DisableCache {
		return
	}
	if err := s.cache.Invalidate(ctx, CacheKey("dashboard", "*")); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func (s *DashboardService) compose(ctx context.Context, session *models.Session) (*dto.DashboardSummary, error) {
	candidates, err := s.clearances.List(ctx, session, "")
	if err != nil {
		return nil, err
	}
	books, err := s.library.ListBooks(ctx, session.Token)
	if err != nil {
		return nil, err
	}
	records, err := s.library.ListBorrowRecords(ctx, session.Token)
	if err != nil {
		return nil, err
	}

	summary := &dto.DashboardSummary{
		Clearance:      CountByStatus(candidates),
		TotalBooks:     len(books),
		RecentRequests: RecentCandidates(candidates, s.cfg.RecentLimit),
		GeneratedAt:    s.now(),
	}
	for _, book := range books {
		if book.Status == models.BookStatusAvailable {
			summary.AvailableBooks++
		}
	}
	loans := SummarizeObligations(records, s.cfg.FineRule)
	summary.ActiveBorrowings = loans.ActiveLoans
	summary.OverdueBorrowings = loans.OverdueBooks
	summary.OutstandingFines = loans.TotalFine
	return summary, nil
}

func (s *DashboardService) tryCache(ctx context.Context, key string) (*dto.DashboardSummary, bool) {
	if s.cache == nil || s.cfg.DisableCache {
		return nil, false
	}
	var cached dto.DashboardSummary
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil || !hit {
		return nil, false
	}
	return &cached, true
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil || s.cfg.DisableCache {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}
