package models

import "time"

// BookStatus is the shelf state of a catalogue item.
type BookStatus string

const (
	BookStatusAvailable BookStatus = "available"
	BookStatusBorrowed  BookStatus = "borrowed"
	BookStatusDamaged   BookStatus = "damaged"
	BookStatusLost      BookStatus = "lost"
)

// Valid reports whether the status is one of the known shelf states.
func (s BookStatus) Valid() bool {
	switch s {
	case BookStatusAvailable, BookStatusBorrowed, BookStatusDamaged, BookStatusLost:
		return true
	}
	return false
}

// Book is a catalogue item held by the library.
type Book struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Author   string     `json:"author"`
	ISBN     string     `json:"isbn"`
	Category string     `json:"category"`
	Status   BookStatus `json:"status"`
	Location string     `json:"location"`
	AddedAt  time.Time  `json:"addedAt"`
}

// BookFilter narrows catalogue listings.
type BookFilter struct {
	Search string
	Status BookStatus
}

// PastPaper is an archived examination paper published through the library.
type PastPaper struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	CourseCode string    `json:"courseCode"`
	Year       int       `json:"year"`
	FileURL    string    `json:"fileUrl"`
	UploadedAt time.Time `json:"uploadedAt"`
}
