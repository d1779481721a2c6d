package models

import "time"

// BorrowStatus is the lifecycle state of a loan.
type BorrowStatus string

const (
	BorrowStatusActive   BorrowStatus = "active"
	BorrowStatusReturned BorrowStatus = "returned"
	BorrowStatusOverdue  BorrowStatus = "overdue"
)

// BorrowCondition records the state an item came back in (or was reported in).
type BorrowCondition string

const (
	ConditionGood    BorrowCondition = "good"
	ConditionDamaged BorrowCondition = "damaged"
	ConditionLost    BorrowCondition = "lost"
)

// BorrowRecord is a single loan of a book to a student. Fine is expressed in
// currency minor units; nil means no fine was assessed by the backend.
type BorrowRecord struct {
	ID         string          `json:"id"`
	BookID     string          `json:"bookId"`
	StudentID  string          `json:"studentId"`
	BorrowDate time.Time       `json:"borrowDate"`
	DueDate    time.Time       `json:"dueDate"`
	ReturnDate *time.Time      `json:"returnDate,omitempty"`
	Status     BorrowStatus    `json:"status"`
	Fine       *int64          `json:"fine,omitempty"`
	Condition  BorrowCondition `json:"condition,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	Book       *Book           `json:"book,omitempty"`
}

// BorrowFilter narrows borrowing listings.
type BorrowFilter struct {
	Status        BorrowStatus
	StudentNumber string
}
