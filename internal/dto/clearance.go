package dto

import (
	"github.com/Darlington720/library-module/internal/models"
)

// ClearanceDecisionRequest carries the administrator's justification for a
// reject or override. Approvals carry no body.
type ClearanceDecisionRequest struct {
	Reason string `json:"reason" form:"reason" validate:"max=1000"`
}

// ClearanceDecisionResult acknowledges a completed decision.
type ClearanceDecisionResult struct {
	Action    models.ClearanceAction    `json:"action"`
	Clearance models.ClearanceRequest   `json:"clearance"`
	Override  *models.ClearanceOverride `json:"override,omitempty"`
	Title     string                    `json:"title"`
	Message   string                    `json:"message"`
}

// ClearanceListResponse is the clearance table with its stats cards.
type ClearanceListResponse struct {
	Query      string                `json:"query"`
	Candidates []models.Candidate    `json:"candidates"`
	Stats      models.ClearanceStats `json:"stats"`
}

// ClearanceDetail is the student profile view: candidate, loans and derived standing.
type ClearanceDetail struct {
	Candidate     models.Candidate          `json:"candidate"`
	BorrowRecords []models.BorrowRecord     `json:"borrowRecords"`
	Obligations   models.ObligationSummary  `json:"obligations"`
	Override      *models.ClearanceOverride `json:"override,omitempty"`
	// OverrideHistory lists every override recorded for the student, newest first.
	OverrideHistory []models.ClearanceOverride `json:"overrideHistory,omitempty"`
	AuditTrail      []models.AuditLog          `json:"auditTrail,omitempty"`
}

// CanApprove reports whether the approve precondition holds.
func (d ClearanceDetail) CanApprove() bool {
	c := d.Candidate.Clearance
	return c.Status == models.ClearanceStatusPending && !c.HasPendingBooks && !c.HasUnpaidFines
}
