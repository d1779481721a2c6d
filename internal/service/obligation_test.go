package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Darlington720/library-module/internal/models"
)

func fine(v int64) *int64 { return &v }

func TestCalculateFine(t *testing.T) {
	rule := DefaultFineRule()
	cases := []struct {
		name   string
		record models.BorrowRecord
		want   int64
	}{
		{"overdue without fine uses default", models.BorrowRecord{Status: models.BorrowStatusOverdue}, 1000},
		{"overdue with assessed fine", models.BorrowRecord{Status: models.BorrowStatusOverdue, Fine: fine(15000)}, 15000},
		{"returned without fine", models.BorrowRecord{Status: models.BorrowStatusReturned}, 0},
		{"active with fine is not counted", models.BorrowRecord{Status: models.BorrowStatusActive, Fine: fine(500)}, 0},
		{"returned with fine is not counted", models.BorrowRecord{Status: models.BorrowStatusReturned, Fine: fine(700)}, 0},
		{"negative fine clamps", models.BorrowRecord{Status: models.BorrowStatusOverdue, Fine: fine(-1)}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CalculateFine(tc.record, rule))
		})
	}
}

func TestCalculateFineCustomDefault(t *testing.T) {
	got := CalculateFine(models.BorrowRecord{Status: models.BorrowStatusOverdue}, FineRule{DefaultOverdueFine: 2500})
	assert.Equal(t, int64(2500), got)
}

func TestSummarizeObligations(t *testing.T) {
	records := []models.BorrowRecord{
		{ID: "1", Status: models.BorrowStatusOverdue, Fine: fine(15000)},
		{ID: "2", Status: models.BorrowStatusActive},
		{ID: "3", Status: models.BorrowStatusReturned, Condition: models.ConditionDamaged},
		{ID: "4", Status: models.BorrowStatusOverdue, Condition: models.ConditionLost},
		{ID: "5", Status: models.BorrowStatusReturned, Condition: models.ConditionGood},
	}

	summary := SummarizeObligations(records, DefaultFineRule())

	assert.Equal(t, 3, summary.ActiveLoans)
	assert.Equal(t, 2, summary.OverdueBooks)
	assert.Equal(t, 2, summary.DamagedOrLost)
	assert.Equal(t, 1, summary.Damaged)
	assert.Equal(t, 1, summary.Lost)
	assert.Equal(t, int64(16000), summary.TotalFine)
	assert.True(t, summary.HasPendingBooks())
	assert.True(t, summary.HasUnpaidFines())
}

func TestSummarizeObligationsInvariants(t *testing.T) {
	statuses := []models.BorrowStatus{models.BorrowStatusActive, models.BorrowStatusReturned, models.BorrowStatusOverdue}
	conditions := []models.BorrowCondition{"", models.ConditionGood, models.ConditionDamaged, models.ConditionLost}

	var records []models.BorrowRecord
	for i := 0; i < 40; i++ {
		records = append(records, models.BorrowRecord{
			Status:    statuses[i%len(statuses)],
			Condition: conditions[(i/3)%len(conditions)],
		})
		summary := SummarizeObligations(records, DefaultFineRule())

		expectedActive := 0
		for _, r := range records {
			if r.Status == models.BorrowStatusActive || r.Status == models.BorrowStatusOverdue {
				expectedActive++
			}
		}
		assert.Equal(t, expectedActive, summary.ActiveLoans)
		assert.LessOrEqual(t, summary.OverdueBooks, summary.ActiveLoans)
		assert.Equal(t, int64(summary.OverdueBooks)*DefaultOverdueFine, summary.TotalFine)
	}
}

func TestSummarizeObligationsEmpty(t *testing.T) {
	summary := SummarizeObligations(nil, DefaultFineRule())
	assert.Equal(t, models.ObligationSummary{}, summary)
	assert.False(t, summary.HasPendingBooks())
	assert.False(t, summary.HasUnpaidFines())
}
