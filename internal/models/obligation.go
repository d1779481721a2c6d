package models

// ObligationSummary is a student's library standing derived from borrow records.
type ObligationSummary struct {
	ActiveLoans   int   `json:"activeLoans"`
	OverdueBooks  int   `json:"overdueBooks"`
	DamagedOrLost int   `json:"damagedOrLost"`
	Damaged       int   `json:"damaged"`
	Lost          int   `json:"lost"`
	TotalFine     int64 `json:"totalFine"`
}

// HasPendingBooks reports whether any loan is still outstanding.
func (s ObligationSummary) HasPendingBooks() bool {
	return s.ActiveLoans > 0
}

// HasUnpaidFines reports whether any fine is still owed.
func (s ObligationSummary) HasUnpaidFines() bool {
	return s.TotalFine > 0
}
