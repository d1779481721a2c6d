package service

import "github.com/Darlington720/library-module/internal/models"

// DefaultOverdueFine is charged per overdue record when the backend assessed no fine.
const DefaultOverdueFine int64 = 1000

// FineRule parameterises fine calculation.
type FineRule struct {
	DefaultOverdueFine int64
}

// DefaultFineRule returns the rule applied when none is configured.
func DefaultFineRule() FineRule {
	return FineRule{DefaultOverdueFine: DefaultOverdueFine}
}

// CalculateFine returns the fine owed for a single record. Only overdue records
// accrue a fine: the assessed amount when present, the flat default otherwise.
func CalculateFine(record models.BorrowRecord, rule FineRule) int64 {
	if record.Status != models.BorrowStatusOverdue {
		return 0
	}
	if record.Fine != nil {
		if *record.Fine < 0 {
			return 0
		}
		return *record.Fine
	}
	return rule.DefaultOverdueFine
}

// SummarizeObligations derives a student's standing from their borrow records.
// Condition and status are independent: a damaged item that was returned counts
// towards DamagedOrLost but not towards ActiveLoans.
func SummarizeObligations(records []models.BorrowRecord, rule FineRule) models.ObligationSummary {
	var summary models.ObligationSummary
	for _, record := range records {
		switch record.Status {
		case models.BorrowStatusActive:
			summary.ActiveLoans++
		case models.BorrowStatusOverdue:
			summary.ActiveLoans++
			summary.OverdueBooks++
		}
		switch record.Condition {
		case models.ConditionDamaged:
			summary.Damaged++
		case models.ConditionLost:
			summary.Lost++
		}
		summary.TotalFine += CalculateFine(record, rule)
	}
	summary.DamagedOrLost = summary.Damaged + summary.Lost
	return summary
}
