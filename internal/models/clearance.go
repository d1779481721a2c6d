package models

import "time"

// ClearanceStatus captures the review state of a graduation clearance request.
type ClearanceStatus string

const (
	ClearanceStatusPending      ClearanceStatus = "pending"
	ClearanceStatusApproved     ClearanceStatus = "approved"
	ClearanceStatusRejected     ClearanceStatus = "rejected"
	ClearanceStatusDisqualified ClearanceStatus = "disqualified"
)

// Terminal reports whether no further client-issued transition is possible.
func (s ClearanceStatus) Terminal() bool {
	return s != ClearanceStatusPending
}

// ClearanceAction enumerates the decisions an administrator can take.
type ClearanceAction string

const (
	ClearanceActionApprove  ClearanceAction = "approve"
	ClearanceActionReject   ClearanceAction = "reject"
	ClearanceActionOverride ClearanceAction = "override"
)

// ClearanceRequest is a student's application for graduation clearance.
// ClearanceKey is the identifier the library backend keys decision mutations by.
type ClearanceRequest struct {
	ID              string          `json:"id"`
	ClearanceKey    string          `json:"clearanceKey"`
	StudentID       string          `json:"studentId"`
	StudentNumber   string          `json:"studentNumber"`
	AcademicYear    string          `json:"academicYear,omitempty"`
	Status          ClearanceStatus `json:"status"`
	SubmittedAt     time.Time       `json:"submittedAt"`
	ReviewedAt      *time.Time      `json:"reviewedAt,omitempty"`
	ReviewedBy      string          `json:"reviewedBy,omitempty"`
	RejectionReason string          `json:"rejectionReason,omitempty"`
	HasPendingBooks bool            `json:"hasPendingBooks"`
	HasUnpaidFines  bool            `json:"hasUnpaidFines"`
	OverrideReason  string          `json:"overrideReason,omitempty"`
	OverrideBy      string          `json:"overrideBy,omitempty"`
	OverrideAt      *time.Time      `json:"overrideAt,omitempty"`
	TotalFineAmount int64           `json:"totalFineAmount"`
	BorrowedBooks   int             `json:"borrowedBooks"`
	OverdueBooks    int             `json:"overdueBooks"`
	DamagedBooks    int             `json:"damagedBooks"`
	LostBooks       int             `json:"lostBooks"`
}

// ApplyObligations copies the derived standing onto the request flags and counters.
func (c *ClearanceRequest) ApplyObligations(summary ObligationSummary) {
	c.HasPendingBooks = summary.HasPendingBooks()
	c.HasUnpaidFines = summary.HasUnpaidFines()
	c.TotalFineAmount = summary.TotalFine
	c.BorrowedBooks = summary.ActiveLoans
	c.OverdueBooks = summary.OverdueBooks
	c.DamagedBooks = summary.Damaged
	c.LostBooks = summary.Lost
}

// OverrideStatus is the lifecycle of an override ledger entry.
type OverrideStatus string

const (
	OverrideStatusActive  OverrideStatus = "active"
	OverrideStatusExpired OverrideStatus = "expired"
	OverrideStatusRevoked OverrideStatus = "revoked"
)

// ClearanceOverride is an append-only record of a manual override.
type ClearanceOverride struct {
	ID            string         `db:"id" json:"id"`
	ClearanceID   string         `db:"clearance_id" json:"clearanceId"`
	StudentNumber string         `db:"student_no" json:"studentNumber"`
	Reason        string         `db:"reason" json:"reason"`
	ApprovedBy    string         `db:"approved_by" json:"approvedBy"`
	ApprovedAt    time.Time      `db:"approved_at" json:"approvedAt"`
	ExpiresAt     *time.Time     `db:"expires_at" json:"expiresAt,omitempty"`
	Status        OverrideStatus `db:"status" json:"status"`
}

// EffectiveStatus resolves expiry against now without mutating the record.
func (o ClearanceOverride) EffectiveStatus(now time.Time) OverrideStatus {
	if o.Status == OverrideStatusActive && o.ExpiresAt != nil && !now.Before(*o.ExpiresAt) {
		return OverrideStatusExpired
	}
	return o.Status
}

// RejectionLog is a historical rejection of a student's clearance, as kept by the backend.
type RejectionLog struct {
	ClearanceID    string    `json:"clearanceId"`
	Reason         string    `json:"reason"`
	RejectedAt     time.Time `json:"rejectedAt"`
	RejectedBy     string    `json:"rejectedBy"`
	RejectedByUser string    `json:"rejectedByUser"`
}

// Candidate is a student awaiting (or having received) a clearance decision.
type Candidate struct {
	Clearance     ClearanceRequest `json:"clearance"`
	Student       Student          `json:"student"`
	RejectionLogs []RejectionLog   `json:"rejectionLogs"`
}

// ClearanceStats counts candidates per status.
type ClearanceStats struct {
	Total        int `json:"total"`
	Pending      int `json:"pending"`
	Approved     int `json:"approved"`
	Rejected     int `json:"rejected"`
	Disqualified int `json:"disqualified"`
}

// Decision is the remote payload for a clearance decision mutation.
type Decision struct {
	ClearanceKey  string
	StudentNumber string
	Status        ClearanceStatus
	Reason        string
}

// ClearanceEvent announces a decision to connected dashboards.
type ClearanceEvent struct {
	Type          string          `json:"type"`
	ClearanceKey  string          `json:"clearanceKey"`
	StudentNumber string          `json:"studentNumber"`
	Status        ClearanceStatus `json:"status"`
	Action        ClearanceAction `json:"action"`
	Actor         string          `json:"actor"`
	At            time.Time       `json:"at"`
}
