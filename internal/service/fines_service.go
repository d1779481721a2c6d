package service

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Darlington720/library-module/internal/dto"
	"github.com/Darlington720/library-module/internal/models"
	appErrors "github.com/Darlington720/library-module/pkg/errors"
)

// FinesService reports fines accrued by overdue loans.
type FinesService struct {
	library  libraryReader
	rule     FineRule
	currency string
}

// NewFinesService constructs a FinesService.
func NewFinesService(library libraryReader, rule FineRule, currency string) *FinesService {
	if currency == "" {
		currency = "UGX"
	}
	return &FinesService{library: library, rule: rule, currency: currency}
}

// Report lists every loan that accrues a fine, largest first.
func (s *FinesService) Report(ctx context.Context, session *models.Session) (*dto.FinesReport, error) {
	if session == nil {
		return nil, appErrors.ErrUnauthorized
	}
	records, err := s.library.ListBorrowRecords(ctx, session.Token)
	if err != nil {
		return nil, err
	}
	return BuildFinesReport(records, s.rule, s.currency), nil
}

// BuildFinesReport totals the fines of records under rule.
func BuildFinesReport(records []models.BorrowRecord, rule FineRule, currency string) *dto.FinesReport {
	report := &dto.FinesReport{Entries: []dto.FineEntry{}, Currency: currency, Total: decimal.Zero, Average: decimal.Zero}
	for _, record := range records {
		amount := CalculateFine(record, rule)
		if amount <= 0 {
			continue
		}
		report.Entries = append(report.Entries, dto.FineEntry{Record: record, Amount: amount})
		report.Total = report.Total.Add(decimal.NewFromInt(amount))
	}
	sort.SliceStable(report.Entries, func(i, j int) bool { return report.Entries[i].Amount > report.Entries[j].Amount })
	report.Count = len(report.Entries)
	if report.Count > 0 {
		report.Average = report.Total.Div(decimal.NewFromInt(int64(report.Count))).Round(2)
	}
	return report
}
