package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Darlington720/library-module/internal/models"
	appErrors "github.com/Darlington720/library-module/pkg/errors"
)

func TestCatalogBooksFilters(t *testing.T) {
	library := &stubLibrary{books: []models.Book{
		{Title: "The Go Programming Language", Author: "Donovan", ISBN: "978-0134190440", Status: models.BookStatusBorrowed},
		{Title: "Algorithms", Author: "Sedgewick", Status: models.BookStatusAvailable},
		{Title: "Écrits", Author: "Lacan", Status: models.BookStatusAvailable},
	}}
	svc := NewCatalogService(library)

	books, err := svc.Books(context.Background(), testSession(), models.BookFilter{})
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, "Algorithms", books[0].Title)

	books, err = svc.Books(context.Background(), testSession(), models.BookFilter{Search: "donovan"})
	require.NoError(t, err)
	require.Len(t, books, 1)

	books, err = svc.Books(context.Background(), testSession(), models.BookFilter{Search: "ecrits"})
	require.NoError(t, err)
	require.Len(t, books, 1)

	books, err = svc.Books(context.Background(), testSession(), models.BookFilter{Status: models.BookStatusAvailable})
	require.NoError(t, err)
	assert.Len(t, books, 2)

	_, err = svc.Books(context.Background(), testSession(), models.BookFilter{Status: "missing"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestCatalogBorrowingsFilters(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	library := &stubLibrary{records: []models.BorrowRecord{
		{ID: "old", StudentID: "2000100", Status: models.BorrowStatusOverdue, BorrowDate: now.Add(-48 * time.Hour)},
		{ID: "new", StudentID: "2000101", Status: models.BorrowStatusActive, BorrowDate: now},
		{ID: "done", StudentID: "2000100", Status: models.BorrowStatusReturned, BorrowDate: now.Add(-time.Hour)},
	}}
	svc := NewCatalogService(library)

	all, err := svc.Borrowings(context.Background(), testSession(), models.BorrowFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "new", all[0].ID)

	overdue, err := svc.Borrowings(context.Background(), testSession(), models.BorrowFilter{Status: models.BorrowStatusOverdue})
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "old", overdue[0].ID)

	student, err := svc.Borrowings(context.Background(), testSession(), models.BorrowFilter{StudentNumber: "2000100"})
	require.NoError(t, err)
	assert.Len(t, student, 2)

	_, err = svc.Borrowings(context.Background(), testSession(), models.BorrowFilter{Status: "lost"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestCatalogPastPapers(t *testing.T) {
	library := &stubLibrary{papers: []models.PastPaper{
		{Title: "Databases", CourseCode: "CSC2101", Year: 2021},
		{Title: "Compilers", CourseCode: "CSC3101", Year: 2023},
		{Title: "Networks", CourseCode: "CSC2201", Year: 2023},
	}}
	svc := NewCatalogService(library)

	papers, err := svc.PastPapers(context.Background(), testSession(), "")
	require.NoError(t, err)
	require.Len(t, papers, 3)
	assert.Equal(t, "Networks", papers[0].Title)
	assert.Equal(t, "Databases", papers[2].Title)

	papers, err = svc.PastPapers(context.Background(), testSession(), "csc3")
	require.NoError(t, err)
	assert.Len(t, papers, 1)

	_, err = svc.PastPapers(context.Background(), nil, "")
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestFoldText(t *testing.T) {
	assert.Equal(t, "nakato zoe", foldText("  Nakato Zoë "))
	assert.Equal(t, "", foldText(" "))
}
