package gateway

import (
	"context"

	"github.com/machinebox/graphql"

	"github.com/Darlington720/library-module/internal/models"
)

const booksQuery = `query library_books {
  library_books {
    id
    title
    author
    isbn
    category
    status
    location
    added_at
  }
}`

const borrowRecordsQuery = `query library_borrow_records {
  library_borrow_records {
    id
    book_id
    student_no
    borrow_date
    due_date
    return_date
    status
    fine
    condition
    notes
    book {
      id
      title
      author
      isbn
    }
  }
}`

const pastPapersQuery = `query library_past_papers {
  library_past_papers {
    id
    title
    course_code
    year
    file_url
    uploaded_at
  }
}`

// ListBooks returns the catalogue.
func (c *Client) ListBooks(ctx context.Context, token string) ([]models.Book, error) {
	var resp booksEnvelope
	if err := c.run(ctx, "library_books", token, graphql.NewRequest(booksQuery), &resp); err != nil {
		return nil, err
	}
	if err := c.check("library_books", resp); err != nil {
		return nil, err
	}
	books := make([]models.Book, 0, len(resp.Books))
	for _, w := range resp.Books {
		books = append(books, w.toModel())
	}
	return books, nil
}

// ListBorrowRecords returns every loan known to the library.
func (c *Client) ListBorrowRecords(ctx context.Context, token string) ([]models.BorrowRecord, error) {
	var resp borrowEnvelope
	if err := c.run(ctx, "library_borrow_records", token, graphql.NewRequest(borrowRecordsQuery), &resp); err != nil {
		return nil, err
	}
	if err := c.check("library_borrow_records", resp); err != nil {
		return nil, err
	}
	records := make([]models.BorrowRecord, 0, len(resp.Records))
	for _, w := range resp.Records {
		records = append(records, w.toModel())
	}
	return records, nil
}

// ListPastPapers returns the archived examination papers.
func (c *Client) ListPastPapers(ctx context.Context, token string) ([]models.PastPaper, error) {
	var resp pastPapersEnvelope
	if err := c.run(ctx, "library_past_papers", token, graphql.NewRequest(pastPapersQuery), &resp); err != nil {
		return nil, err
	}
	if err := c.check("library_past_papers", resp); err != nil {
		return nil, err
	}
	papers := make([]models.PastPaper, 0, len(resp.Papers))
	for _, w := range resp.Papers {
		papers = append(papers, w.toModel())
	}
	return papers, nil
}
