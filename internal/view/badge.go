package view

import "github.com/Darlington720/library-module/internal/models"

// Variant names map onto CSS classes in the stylesheet.
const (
	VariantNeutral = "neutral"
	VariantSuccess = "success"
	VariantDanger  = "danger"
	VariantWarning = "warning"
	VariantInfo    = "info"
)

// Badge is a coloured status pill.
type Badge struct {
	Label   string
	Variant string
}

// ClearanceBadge maps a clearance status onto its pill.
func ClearanceBadge(status models.ClearanceStatus) Badge {
	switch status {
	case models.ClearanceStatusApproved:
		return Badge{Label: "Approved", Variant: VariantSuccess}
	case models.ClearanceStatusRejected:
		return Badge{Label: "Rejected", Variant: VariantDanger}
	case models.ClearanceStatusDisqualified:
		return Badge{Label: "Disqualified", Variant: VariantWarning}
	default:
		return Badge{Label: "Pending", Variant: VariantNeutral}
	}
}

// BorrowBadge reports a loan. A damaged or lost condition wins over the status.
func BorrowBadge(record models.BorrowRecord) Badge {
	switch record.Condition {
	case models.ConditionLost:
		return Badge{Label: "Lost", Variant: VariantDanger}
	case models.ConditionDamaged:
		return Badge{Label: "Damaged", Variant: VariantWarning}
	}
	switch record.Status {
	case models.BorrowStatusOverdue:
		return Badge{Label: "Overdue", Variant: VariantDanger}
	case models.BorrowStatusReturned:
		return Badge{Label: "Returned", Variant: VariantSuccess}
	default:
		return Badge{Label: "Borrowed", Variant: VariantInfo}
	}
}

// BookBadge maps a shelf status onto its pill.
func BookBadge(status models.BookStatus) Badge {
	switch status {
	case models.BookStatusAvailable:
		return Badge{Label: "Available", Variant: VariantSuccess}
	case models.BookStatusBorrowed:
		return Badge{Label: "Borrowed", Variant: VariantInfo}
	case models.BookStatusDamaged:
		return Badge{Label: "Damaged", Variant: VariantWarning}
	case models.BookStatusLost:
		return Badge{Label: "Lost", Variant: VariantDanger}
	}
	return Badge{Label: "Unknown", Variant: VariantNeutral}
}
