package service

import (
	"context"
	"sort"
	"strings"

	"github.com/Darlington720/library-module/internal/models"
	appErrors "github.com/Darlington720/library-module/pkg/errors"
)

// CatalogService serves the read-only books, borrowings and past papers pages.
type CatalogService struct {
	library libraryReader
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(library libraryReader) *CatalogService {
	return &CatalogService{library: library}
}

// Books lists catalogue items matching filter, sorted by title.
func (s *CatalogService) Books(ctx context.Context, session *models.Session, filter models.BookFilter) ([]models.Book, error) {
	if session == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid book status")
	}
	books, err := s.library.ListBooks(ctx, session.Token)
	if err != nil {
		return nil, err
	}
	query := foldText(filter.Search)
	result := make([]models.Book, 0, len(books))
	for _, book := range books {
		if filter.Status != "" && book.Status != filter.Status {
			continue
		}
		if query != "" && !containsAny(query, book.Title, book.Author, book.ISBN, book.Category) {
			continue
		}
		result = append(result, book)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return strings.ToLower(result[i].Title) < strings.ToLower(result[j].Title)
	})
	return result, nil
}

// Borrowings lists loans matching filter, most recent first.
func (s *CatalogService) Borrowings(ctx context.Context, session *models.Session, filter models.BorrowFilter) ([]models.BorrowRecord, error) {
	if session == nil {
		return nil, appErrors.ErrUnauthorized
	}
	switch filter.Status {
	case "", models.BorrowStatusActive, models.BorrowStatusOverdue, models.BorrowStatusReturned:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid borrowing status")
	}
	records, err := s.library.ListBorrowRecords(ctx, session.Token)
	if err != nil {
		return nil, err
	}
	result := make([]models.BorrowRecord, 0, len(records))
	for _, record := range records {
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		if filter.StudentNumber != "" && record.StudentID != filter.StudentNumber {
			continue
		}
		result = append(result, record)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].BorrowDate.After(result[j].BorrowDate) })
	return result, nil
}

// PastPapers lists archived examination papers, newest year first.
func (s *CatalogService) PastPapers(ctx context.Context, session *models.Session, search string) ([]models.PastPaper, error) {
	if session == nil {
		return nil, appErrors.ErrUnauthorized
	}
	papers, err := s.library.ListPastPapers(ctx, session.Token)
	if err != nil {
		return nil, err
	}
	query := foldText(search)
	result := make([]models.PastPaper, 0, len(papers))
	for _, paper := range papers {
		if query != "" && !containsAny(query, paper.Title, paper.CourseCode) {
			continue
		}
		result = append(result, paper)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year > result[j].Year
		}
		return result[i].CourseCode < result[j].CourseCode
	})
	return result, nil
}
