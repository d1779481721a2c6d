package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Darlington720/library-module/internal/models"
)

// OverrideRepository is the append-only ledger of manual clearance overrides.
type OverrideRepository struct {
	db *sqlx.DB
}

// NewOverrideRepository constructs the repository.
func NewOverrideRepository(db *sqlx.DB) *OverrideRepository {
	return &OverrideRepository{db: db}
}

// Append records a new override.
func (r *OverrideRepository) Append(ctx context.Context, override *models.ClearanceOverride) error {
	if override.ID == "" {
		override.ID = uuid.NewString()
	}
	if override.ApprovedAt.IsZero() {
		override.ApprovedAt = time.Now().UTC()
	}
	if override.Status == "" {
		override.Status = models.OverrideStatusActive
	}
	const query = `INSERT INTO clearance_overrides (id, clearance_id, student_no, reason, approved_by, approved_at, expires_at, status)
	VALUES (:id, :clearance_id, :student_no, :reason, :approved_by, :approved_at, :expires_at, :status)`
	if _, err := r.db.NamedExecContext(ctx, query, override); err != nil {
		return fmt.Errorf("append clearance override: %w", err)
	}
	return nil
}

// Latest returns the most recent override for clearanceID, or nil when none exists.
func (r *OverrideRepository) Latest(ctx context.Context, clearanceID string) (*models.ClearanceOverride, error) {
	const query = `SELECT id, clearance_id, student_no, reason, approved_by, approved_at, expires_at, status
	FROM clearance_overrides WHERE clearance_id = $1 ORDER BY approved_at DESC LIMIT 1`
	var override models.ClearanceOverride
	if err := r.db.GetContext(ctx, &override, query, clearanceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest clearance override: %w", err)
	}
	return &override, nil
}

// ListByStudent returns every override recorded for a student, newest first.
func (r *OverrideRepository) ListByStudent(ctx context.Context, studentNumber string) ([]models.ClearanceOverride, error) {
	const query = `SELECT id, clearance_id, student_no, reason, approved_by, approved_at, expires_at, status
	FROM clearance_overrides WHERE student_no = $1 ORDER BY approved_at DESC`
	var overrides []models.ClearanceOverride
	if err := r.db.SelectContext(ctx, &overrides, query, studentNumber); err != nil {
		return nil, fmt.Errorf("list clearance overrides: %w", err)
	}
	return overrides, nil
}
