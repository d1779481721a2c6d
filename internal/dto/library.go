package dto

import (
	"github.com/shopspring/decimal"

	"github.com/Darlington720/library-module/internal/models"
)

// FineEntry is one overdue loan with the fine it accrues.
type FineEntry struct {
	Record models.BorrowRecord `json:"record"`
	Amount int64               `json:"amount"`
}

// FinesReport lists outstanding fines with totals.
type FinesReport struct {
	Entries  []FineEntry     `json:"entries"`
	Count    int             `json:"count"`
	Total    decimal.Decimal `json:"total"`
	Average  decimal.Decimal `json:"average"`
	Currency string          `json:"currency"`
}

// StartSessionRequest exchanges a provider-issued token for a session cookie.
type StartSessionRequest struct {
	Token string `json:"token" form:"token" validate:"required"`
}

// ThemeRequest persists the UI theme preference.
type ThemeRequest struct {
	Theme string `json:"theme" form:"theme" validate:"required,oneof=light dark"`
}
