package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Darlington720/library-module/internal/dto"
	"github.com/Darlington720/library-module/internal/models"
	appErrors "github.com/Darlington720/library-module/pkg/errors"
)

// Decision outcomes recorded in metrics.
const (
	DecisionOutcomeSuccess = "success"
	DecisionOutcomeBlocked = "blocked"
	DecisionOutcomeBusy    = "busy"
	DecisionOutcomeFailed  = "failed"
)

const clearanceResource = "clearance"

var (
	errReasonRequired = appErrors.Clone(appErrors.ErrValidation, "Reason Required")
	errCannotApprove  = appErrors.Clone(appErrors.ErrValidation, "Cannot Approve: student has pending books or unpaid fines")
	errNotPending     = appErrors.Clone(appErrors.ErrConflict, "clearance is not pending")
)

type clearanceGateway interface {
	ListClearanceCandidates(ctx context.Context, token string) ([]models.Candidate, error)
	StudentBorrowRecords(ctx context.Context, token, studentNumber string) ([]models.BorrowRecord, error)
	SubmitClearanceDecision(ctx context.Context, token string, decision models.Decision) error
	SubmitClearanceOverride(ctx context.Context, token string, decision models.Decision) error
}

type overrideLedger interface {
	Append(ctx context.Context, override *models.ClearanceOverride) error
	Latest(ctx context.Context, clearanceID string) (*models.ClearanceOverride, error)
	ListByStudent(ctx context.Context, studentNumber string) ([]models.ClearanceOverride, error)
}

type auditReader interface {
	ListAuditLogs(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error)
}

type clearanceEvents interface {
	Publish(event models.ClearanceEvent)
}

type dashboardInvalidator interface {
	InvalidateDashboard(ctx context.Context)
}

// ClearanceService lists clearance candidates and applies administrator decisions.
type ClearanceService struct {
	gateway     clearanceGateway
	ledger      overrideLedger
	audit       auditLogger
	guard       ActionGuard
	events      clearanceEvents
	dashboard   dashboardInvalidator
	metrics     *MetricsService
	rule        FineRule
	overrideTTL time.Duration
	now         func() time.Time
	validator   *validator.Validate
	logger      *zap.Logger
}

// ClearanceServiceOption configures the service.
type ClearanceServiceOption func(*ClearanceService)

// WithActionGuard overrides the in-process single-flight guard.
func WithActionGuard(guard ActionGuard) ClearanceServiceOption {
	return func(s *ClearanceService) {
		if guard != nil {
			s.guard = guard
		}
	}
}

// WithClearanceEvents publishes decisions to connected dashboards.
func WithClearanceEvents(events clearanceEvents) ClearanceServiceOption {
	return func(s *ClearanceService) { s.events = events }
}

// WithDashboardInvalidator purges cached dashboard counters after decisions.
func WithDashboardInvalidator(d dashboardInvalidator) ClearanceServiceOption {
	return func(s *ClearanceService) { s.dashboard = d }
}

// WithClearanceMetrics records decision outcomes.
func WithClearanceMetrics(m *MetricsService) ClearanceServiceOption {
	return func(s *ClearanceService) { s.metrics = m }
}

// WithFineRule sets the fine rule used to derive obligations.
func WithFineRule(rule FineRule) ClearanceServiceOption {
	return func(s *ClearanceService) { s.rule = rule }
}

// WithOverrideTTL makes recorded overrides expire after ttl. Zero means never.
func WithOverrideTTL(ttl time.Duration) ClearanceServiceOption {
	return func(s *ClearanceService) { s.overrideTTL = ttl }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) ClearanceServiceOption {
	return func(s *ClearanceService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewClearanceService constructs the service with defaults.
func NewClearanceService(gateway clearanceGateway, ledger overrideLedger, audit auditLogger, logger *zap.Logger, opts ...ClearanceServiceOption) *ClearanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ClearanceService{
		gateway:   gateway,
		ledger:    ledger,
		audit:     audit,
		guard:     NewLocalActionGuard(),
		rule:      DefaultFineRule(),
		now:       func() time.Time { return time.Now().UTC() },
		validator: validator.New(),
		logger:    logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// List fetches every candidate from the library backend and applies query.
func (s *ClearanceService) List(ctx context.Context, session *models.Session, query string) ([]models.Candidate, error) {
	if session == nil {
		return nil, appErrors.ErrUnauthorized
	}
	candidates, err := s.gateway.ListClearanceCandidates(ctx, session.Token)
	if err != nil {
		return nil, err
	}
	return FilterCandidates(candidates, query), nil
}

// Overview returns the filtered table together with stats over the full set.
func (s *ClearanceService) Overview(ctx context.Context, session *models.Session, query string) (*dto.ClearanceListResponse, error) {
	if session == nil {
		return nil, appErrors.ErrUnauthorized
	}
	candidates, err := s.gateway.ListClearanceCandidates(ctx, session.Token)
	if err != nil {
		return nil, err
	}
	return &dto.ClearanceListResponse{
		Query:      strings.TrimSpace(query),
		Candidates: FilterCandidates(candidates, query),
		Stats:      CountByStatus(candidates),
	}, nil
}

// Stats counts candidates per status.
func (s *ClearanceService) Stats(ctx context.Context, session *models.Session) (models.ClearanceStats, error) {
	candidates, err := s.List(ctx, session, "")
	if err != nil {
		return models.ClearanceStats{}, err
	}
	return CountByStatus(candidates), nil
}

// Detail resolves a candidate with its loans, derived obligations and any
// active override recorded locally.
func (s *ClearanceService) Detail(ctx context.Context, session *models.Session, id string) (*dto.ClearanceDetail, error) {
	candidate, err := s.find(ctx, session, id)
	if err != nil {
		return nil, err
	}
	records, err := s.gateway.StudentBorrowRecords(ctx, session.Token, candidate.Clearance.StudentNumber)
	if err != nil {
		return nil, err
	}
	summary := SummarizeObligations(records, s.rule)
	candidate.Clearance.ApplyObligations(summary)

	detail := &dto.ClearanceDetail{
		Candidate:     *candidate,
		BorrowRecords: records,
		Obligations:   summary,
	}
	detail.Override = s.activeOverride(ctx, candidate.Clearance.ClearanceKey)
	if detail.Override != nil {
		applyOverride(&detail.Candidate.Clearance, detail.Override)
	}
	detail.OverrideHistory = s.overrideHistory(ctx, candidate.Clearance.StudentNumber)
	if reader, ok := s.audit.(auditReader); ok {
		logs, err := reader.ListAuditLogs(ctx, models.AuditFilter{Resource: clearanceResource, ResourceID: candidate.Clearance.ClearanceKey, Limit: 20})
		if err != nil {
			s.logger.Warn("failed to load clearance audit trail", zap.String("clearance", candidate.Clearance.ClearanceKey), zap.Error(err))
		}
		detail.AuditTrail = logs
	}
	return detail, nil
}

// Approve clears a student for graduation. It is refused without any remote
// call while the student has outstanding loans or fines.
func (s *ClearanceService) Approve(ctx context.Context, session *models.Session, id string) (*dto.ClearanceDecisionResult, error) {
	if session == nil {
		return nil, appErrors.ErrUnauthorized
	}
	candidate, err := s.find(ctx, session, id)
	if err != nil {
		return nil, err
	}
	release, err := s.acquire(ctx, candidate, models.ClearanceActionApprove)
	if err != nil {
		return nil, err
	}
	defer release()

	if candidate.Clearance.Status != models.ClearanceStatusPending {
		s.metrics.RecordDecision(models.ClearanceActionApprove, DecisionOutcomeBlocked)
		return nil, errNotPending
	}
	records, err := s.gateway.StudentBorrowRecords(ctx, session.Token, candidate.Clearance.StudentNumber)
	if err != nil {
		s.metrics.RecordDecision(models.ClearanceActionApprove, DecisionOutcomeFailed)
		return nil, err
	}
	candidate.Clearance.ApplyObligations(SummarizeObligations(records, s.rule))
	if candidate.Clearance.HasPendingBooks || candidate.Clearance.HasUnpaidFines {
		s.metrics.RecordDecision(models.ClearanceActionApprove, DecisionOutcomeBlocked)
		return nil, errCannotApprove
	}

	before := candidate.Clearance
	decision := models.Decision{
		ClearanceKey:  candidate.Clearance.ClearanceKey,
		StudentNumber: candidate.Clearance.StudentNumber,
		Status:        models.ClearanceStatusApproved,
	}
	if err := s.gateway.SubmitClearanceDecision(ctx, session.Token, decision); err != nil {
		s.metrics.RecordDecision(models.ClearanceActionApprove, DecisionOutcomeFailed)
		return nil, err
	}

	s.markReviewed(&candidate.Clearance, session, models.ClearanceStatusApproved)
	s.afterDecision(ctx, session, models.ClearanceActionApprove, models.AuditActionClearanceApprove, before, candidate.Clearance, "")

	return &dto.ClearanceDecisionResult{
		Action:    models.ClearanceActionApprove,
		Clearance: candidate.Clearance,
		Title:     "Clearance Approved",
		Message:   "The student has been cleared for graduation.",
	}, nil
}

// Reject refuses a clearance with a mandatory reason.
func (s *ClearanceService) Reject(ctx context.Context, session *models.Session, id, reason string) (*dto.ClearanceDecisionResult, error) {
	if session == nil {
		return nil, appErrors.ErrUnauthorized
	}
	reason, err := s.checkReason(reason)
	if err != nil {
		s.metrics.RecordDecision(models.ClearanceActionReject, DecisionOutcomeBlocked)
		return nil, err
	}
	candidate, err := s.find(ctx, session, id)
	if err != nil {
		return nil, err
	}
	release, err := s.acquire(ctx, candidate, models.ClearanceActionReject)
	if err != nil {
		return nil, err
	}
	defer release()

	if candidate.Clearance.Status != models.ClearanceStatusPending {
		s.metrics.RecordDecision(models.ClearanceActionReject, DecisionOutcomeBlocked)
		return nil, errNotPending
	}

	before := candidate.Clearance
	decision := models.Decision{
		ClearanceKey:  candidate.Clearance.ClearanceKey,
		StudentNumber: candidate.Clearance.StudentNumber,
		Status:        models.ClearanceStatusRejected,
		Reason:        reason,
	}
	if err := s.gateway.SubmitClearanceDecision(ctx, session.Token, decision); err != nil {
		s.metrics.RecordDecision(models.ClearanceActionReject, DecisionOutcomeFailed)
		return nil, err
	}

	s.markReviewed(&candidate.Clearance, session, models.ClearanceStatusRejected)
	candidate.Clearance.RejectionReason = reason
	s.afterDecision(ctx, session, models.ClearanceActionReject, models.AuditActionClearanceReject, before, candidate.Clearance, reason)

	return &dto.ClearanceDecisionResult{
		Action:    models.ClearanceActionReject,
		Clearance: candidate.Clearance,
		Title:     "Clearance Rejected",
		Message:   "The student has been notified of the rejection.",
	}, nil
}

// Override approves a clearance regardless of outstanding obligations and
// records the justification in the override ledger.
func (s *ClearanceService) Override(ctx context.Context, session *models.Session, id, reason string) (*dto.ClearanceDecisionResult, error) {
	if session == nil {
		return nil, appErrors.ErrUnauthorized
	}
	reason, err := s.checkReason(reason)
	if err != nil {
		s.metrics.RecordDecision(models.ClearanceActionOverride, DecisionOutcomeBlocked)
		return nil, err
	}
	candidate, err := s.find(ctx, session, id)
	if err != nil {
		return nil, err
	}
	release, err := s.acquire(ctx, candidate, models.ClearanceActionOverride)
	if err != nil {
		return nil, err
	}
	defer release()

	if candidate.Clearance.Status != models.ClearanceStatusPending {
		s.metrics.RecordDecision(models.ClearanceActionOverride, DecisionOutcomeBlocked)
		return nil, errNotPending
	}

	before := candidate.Clearance
	decision := models.Decision{
		ClearanceKey:  candidate.Clearance.ClearanceKey,
		StudentNumber: candidate.Clearance.StudentNumber,
		Status:        models.ClearanceStatusApproved,
		Reason:        reason,
	}
	if err := s.gateway.SubmitClearanceOverride(ctx, session.Token, decision); err != nil {
		s.metrics.RecordDecision(models.ClearanceActionOverride, DecisionOutcomeFailed)
		return nil, err
	}

	now := s.now()
	override := &models.ClearanceOverride{
		ClearanceID:   candidate.Clearance.ClearanceKey,
		StudentNumber: candidate.Clearance.StudentNumber,
		Reason:        reason,
		ApprovedBy:    session.Actor(),
		ApprovedAt:    now,
		Status:        models.OverrideStatusActive,
	}
	if s.overrideTTL > 0 {
		expires := now.Add(s.overrideTTL)
		override.ExpiresAt = &expires
	}
	if s.ledger != nil {
		if err := s.ledger.Append(ctx, override); err != nil {
			s.logger.Error("failed to append clearance override", zap.String("clearance", override.ClearanceID), zap.Error(err))
		}
	}

	s.markReviewed(&candidate.Clearance, session, models.ClearanceStatusApproved)
	applyOverride(&candidate.Clearance, override)
	s.afterDecision(ctx, session, models.ClearanceActionOverride, models.AuditActionClearanceOverride, before, candidate.Clearance, reason)

	return &dto.ClearanceDecisionResult{
		Action:    models.ClearanceActionOverride,
		Clearance: candidate.Clearance,
		Override:  override,
		Title:     "Override Applied",
		Message:   "Manual override has been applied to the clearance.",
	}, nil
}

func (s *ClearanceService) checkReason(reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", errReasonRequired
	}
	if err := s.validator.Struct(dto.ClearanceDecisionRequest{Reason: reason}); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "reason must be at most 1000 characters")
	}
	return reason, nil
}

func (s *ClearanceService) find(ctx context.Context, session *models.Session, id string) (*models.Candidate, error) {
	if session == nil {
		return nil, appErrors.ErrUnauthorized
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "clearance id is required")
	}
	candidates, err := s.gateway.ListClearanceCandidates(ctx, session.Token)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		c := candidates[i]
		if c.Clearance.ID == id || c.Clearance.ClearanceKey == id {
			return &c, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "clearance request not found")
}

func (s *ClearanceService) acquire(ctx context.Context, candidate *models.Candidate, action models.ClearanceAction) (func(), error) {
	release, err := s.guard.Acquire(ctx, candidate.Clearance.ClearanceKey+":"+string(action))
	if err != nil {
		s.metrics.RecordDecision(action, DecisionOutcomeBusy)
		return nil, err
	}
	return release, nil
}

func (s *ClearanceService) markReviewed(c *models.ClearanceRequest, session *models.Session, status models.ClearanceStatus) {
	now := s.now()
	c.Status = status
	c.ReviewedAt = &now
	c.ReviewedBy = session.Actor()
}

func (s *ClearanceService) afterDecision(ctx context.Context, session *models.Session, action models.ClearanceAction, auditAction string, before, after models.ClearanceRequest, reason string) {
	s.metrics.RecordDecision(action, DecisionOutcomeSuccess)

	emitAudit(ctx, s.audit, s.logger, session, &models.AuditLog{
		Action:     auditAction,
		Resource:   clearanceResource,
		ResourceID: stringPtr(after.ClearanceKey),
		OldValues:  auditValues(map[string]interface{}{"status": before.Status}),
		NewValues: auditValues(map[string]interface{}{
			"status":     after.Status,
			"student_no": after.StudentNumber,
			"reason":     reason,
		}),
	})

	if s.dashboard != nil {
		s.dashboard.InvalidateDashboard(ctx)
	}
	if s.events != nil {
		s.events.Publish(models.ClearanceEvent{
			Type:          "clearance.updated",
			ClearanceKey:  after.ClearanceKey,
			StudentNumber: after.StudentNumber,
			Status:        after.Status,
			Action:        action,
			Actor:         session.Actor(),
			At:            s.now(),
		})
	}
	s.logger.Info("clearance decision recorded",
		zap.String("action", string(action)),
		zap.String("clearance", after.ClearanceKey),
		zap.String("actor", session.Actor()),
	)
}

func (s *ClearanceService) overrideHistory(ctx context.Context, studentNumber string) []models.ClearanceOverride {
	if s.ledger == nil {
		return nil
	}
	history, err := s.ledger.ListByStudent(ctx, studentNumber)
	if err != nil {
		s.logger.Warn("failed to load override history", zap.String("student", studentNumber), zap.Error(err))
		return nil
	}
	now := s.now()
	for i := range history {
		history[i].Status = history[i].EffectiveStatus(now)
	}
	return history
}

func (s *ClearanceService) activeOverride(ctx context.Context, clearanceKey string) *models.ClearanceOverride {
	if s.ledger == nil {
		return nil
	}
	override, err := s.ledger.Latest(ctx, clearanceKey)
	if err != nil {
		s.logger.Warn("failed to load clearance override", zap.String("clearance", clearanceKey), zap.Error(err))
		return nil
	}
	if override == nil {
		return nil
	}
	override.Status = override.EffectiveStatus(s.now())
	if override.Status != models.OverrideStatusActive {
		return nil
	}
	return override
}

func applyOverride(c *models.ClearanceRequest, override *models.ClearanceOverride) {
	at := override.ApprovedAt
	c.OverrideReason = override.Reason
	c.OverrideBy = override.ApprovedBy
	c.OverrideAt = &at
}

// FilterCandidates keeps candidates whose registration number, student number
// or name contains query, ignoring case and diacritics. An empty query keeps everything.
func FilterCandidates(candidates []models.Candidate, query string) []models.Candidate {
	query = foldText(query)
	if query == "" {
		return candidates
	}
	result := make([]models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if containsAny(query,
			c.Student.RegistrationNumber,
			c.Student.StudentNumber,
			c.Student.Name(),
			strings.TrimSpace(c.Student.OtherNames+" "+c.Student.Surname),
		) {
			result = append(result, c)
		}
	}
	return result
}

// CountByStatus tallies candidates per clearance status.
func CountByStatus(candidates []models.Candidate) models.ClearanceStats {
	stats := models.ClearanceStats{Total: len(candidates)}
	for _, c := range candidates {
		switch c.Clearance.Status {
		case models.ClearanceStatusPending:
			stats.Pending++
		case models.ClearanceStatusApproved:
			stats.Approved++
		case models.ClearanceStatusRejected:
			stats.Rejected++
		case models.ClearanceStatusDisqualified:
			stats.Disqualified++
		}
	}
	return stats
}

// RecentCandidates returns up to n candidates, newest submission first.
func RecentCandidates(candidates []models.Candidate, n int) []models.Candidate {
	sorted := append([]models.Candidate(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Clearance.SubmittedAt.After(sorted[j].Clearance.SubmittedAt)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
