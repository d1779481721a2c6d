package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Darlington720/library-module/internal/models"
)

// MemoryAuditRepository keeps the audit trail in process when no database is configured.
type MemoryAuditRepository struct {
	mu   sync.RWMutex
	logs []models.AuditLog
}

// NewMemoryAuditRepository constructs an empty in-process audit trail.
func NewMemoryAuditRepository() *MemoryAuditRepository {
	return &MemoryAuditRepository{}
}

// CreateAuditLog stores an audit log entry.
func (r *MemoryAuditRepository) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	r.logs = append(r.logs, *log)
	r.mu.Unlock()
	return nil
}

// ListAuditLogs returns the newest entries matching filter.
func (r *MemoryAuditRepository) ListAuditLogs(_ context.Context, filter models.AuditFilter) ([]models.AuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	result := make([]models.AuditLog, 0, limit)
	for i := len(r.logs) - 1; i >= 0 && len(result) < limit; i-- {
		log := r.logs[i]
		if filter.Resource != "" && log.Resource != filter.Resource {
			continue
		}
		if filter.ResourceID != "" && (log.ResourceID == nil || *log.ResourceID != filter.ResourceID) {
			continue
		}
		result = append(result, log)
	}
	return result, nil
}

// MemoryOverrideRepository is an in-process override ledger.
type MemoryOverrideRepository struct {
	mu        sync.RWMutex
	overrides []models.ClearanceOverride
}

// NewMemoryOverrideRepository constructs an empty ledger.
func NewMemoryOverrideRepository() *MemoryOverrideRepository {
	return &MemoryOverrideRepository{}
}

// Append records a new override.
func (r *MemoryOverrideRepository) Append(_ context.Context, override *models.ClearanceOverride) error {
	if override.ID == "" {
		override.ID = uuid.NewString()
	}
	if override.ApprovedAt.IsZero() {
		override.ApprovedAt = time.Now().UTC()
	}
	if override.Status == "" {
		override.Status = models.OverrideStatusActive
	}
	r.mu.Lock()
	r.overrides = append(r.overrides, *override)
	r.mu.Unlock()
	return nil
}

// Latest returns the most recent override for clearanceID, or nil when none exists.
func (r *MemoryOverrideRepository) Latest(_ context.Context, clearanceID string) (*models.ClearanceOverride, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *models.ClearanceOverride
	for i := range r.overrides {
		o := r.overrides[i]
		if o.ClearanceID != clearanceID {
			continue
		}
		if latest == nil || !o.ApprovedAt.Before(latest.ApprovedAt) {
			copied := o
			latest = &copied
		}
	}
	return latest, nil
}

// ListByStudent returns every override recorded for a student, newest first.
func (r *MemoryOverrideRepository) ListByStudent(_ context.Context, studentNumber string) ([]models.ClearanceOverride, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []models.ClearanceOverride
	for _, o := range r.overrides {
		if o.StudentNumber == studentNumber {
			result = append(result, o)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].ApprovedAt.After(result[j].ApprovedAt) })
	return result, nil
}
