package dto

import (
	"time"

	"github.com/Darlington720/library-module/internal/models"
)

// DashboardSummary captures the landing page counters.
type DashboardSummary struct {
	Clearance         models.ClearanceStats `json:"clearance"`
	TotalBooks        int                   `json:"totalBooks"`
	AvailableBooks    int                   `json:"availableBooks"`
	ActiveBorrowings  int                   `json:"activeBorrowings"`
	OverdueBorrowings int                   `json:"overdueBorrowings"`
	OutstandingFines  int64                 `json:"outstandingFines"`
	RecentRequests    []models.Candidate    `json:"recentRequests"`
	GeneratedAt       time.Time             `json:"generatedAt"`
}
