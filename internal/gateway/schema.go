package gateway

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Darlington720/library-module/internal/models"
)

// flexString accepts identifiers the backend sends either as strings or numbers.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

func (s flexString) String() string { return strings.TrimSpace(string(s)) }

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp reads epoch milliseconds (or seconds) and the ISO layouts the
// backend emits. The zero time and false are returned for anything else.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if len(strings.TrimPrefix(raw, "-")) >= 12 {
			return time.UnixMilli(n).UTC(), true
		}
		return time.Unix(n, 0).UTC(), true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func optionalTime(raw flexString) *time.Time {
	t, ok := ParseTimestamp(raw.String())
	if !ok {
		return nil
	}
	return &t
}

func requiredTime(raw flexString) time.Time {
	t, _ := ParseTimestamp(raw.String())
	return t
}

// normaliseClearanceStatus maps the backend vocabulary onto ClearanceStatus.
// The backend reports approved clearances as "cleared".
func normaliseClearanceStatus(raw string) (models.ClearanceStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending", "":
		return models.ClearanceStatusPending, true
	case "approved", "cleared":
		return models.ClearanceStatusApproved, true
	case "rejected":
		return models.ClearanceStatusRejected, true
	case "disqualified":
		return models.ClearanceStatusDisqualified, true
	}
	return "", false
}

func remoteStatus(status models.ClearanceStatus) string {
	if status == models.ClearanceStatusApproved {
		return "cleared"
	}
	return string(status)
}

type profileEnvelope struct {
	MyProfile *profileWire `json:"my_profile"`
}

type profileWire struct {
	ID      flexString `json:"id" validate:"required"`
	UserID  flexString `json:"user_id"`
	Email   string     `json:"email"`
	Biodata *struct {
		Email      string `json:"email"`
		Salutation string `json:"salutation"`
		Surname    string `json:"surname"`
		OtherNames string `json:"other_names"`
	} `json:"biodata"`
	LastLoggedIn *struct {
		LoggedIn flexString `json:"logged_in"`
	} `json:"last_logged_in"`
	Role *roleWire `json:"role" validate:"required"`
}

type roleWire struct {
	ID       flexString   `json:"id"`
	RoleName string       `json:"role_name"`
	Modules  []moduleWire `json:"_modules" validate:"dive"`
}

type moduleWire struct {
	ID    flexString `json:"id"`
	Title string     `json:"title" validate:"required"`
	Route string     `json:"route" validate:"required"`
	Logo  string     `json:"logo"`
}

func (w profileWire) toModel() models.Profile {
	p := models.Profile{
		ID:     w.ID.String(),
		UserID: w.UserID.String(),
		Email:  w.Email,
	}
	if w.Biodata != nil {
		p.Salutation = w.Biodata.Salutation
		p.Surname = w.Biodata.Surname
		p.OtherNames = w.Biodata.OtherNames
		if p.Email == "" {
			p.Email = w.Biodata.Email
		}
	}
	if w.LastLoggedIn != nil {
		p.LastLoginAt = optionalTime(w.LastLoggedIn.LoggedIn)
	}
	if w.Role != nil {
		p.Role = models.Role{ID: w.Role.ID.String(), Name: w.Role.RoleName}
		for _, m := range w.Role.Modules {
			p.Role.Modules = append(p.Role.Modules, models.Module{
				ID:    m.ID.String(),
				Title: m.Title,
				Route: m.Route,
				Logo:  m.Logo,
			})
		}
	}
	return p
}

type clearanceEnvelope struct {
	Students []clearanceStudentWire `json:"library_clearance_students"`
}

type clearanceStudentWire struct {
	ID             flexString          `json:"id" validate:"required"`
	StudentNo      string              `json:"student_no" validate:"required"`
	Status         string              `json:"status"`
	AccYrTitle     string              `json:"acc_yr_title"`
	SectionID      flexString          `json:"section_id"`
	CreatedOn      flexString          `json:"created_on"`
	StudentDetails *studentDetailsWire `json:"student_details"`
	RejectionLogs  []rejectionLogWire  `json:"rejection_logs"`
}

type studentDetailsWire struct {
	Biodata *struct {
		Surname    string `json:"surname"`
		OtherNames string `json:"other_names"`
		Email      string `json:"email"`
		PhoneNo    string `json:"phone_no"`
	} `json:"biodata"`
	RegistrationNo string `json:"registration_no"`
	StudentNo      string `json:"student_no"`
	CourseDetails  *struct {
		Course *struct {
			CourseCode  string `json:"course_code"`
			CourseTitle string `json:"course_title"`
		} `json:"course"`
	} `json:"course_details"`
}

type rejectionLogWire struct {
	ClearanceID    flexString `json:"clearance_id"`
	RejectReason   string     `json:"reject_reason"`
	RejectedAt     flexString `json:"rejected_at"`
	RejectedBy     flexString `json:"rejected_by"`
	RejectedByUser string     `json:"rejected_by_user"`
}

func (w clearanceStudentWire) toCandidate() (models.Candidate, bool) {
	status, ok := normaliseClearanceStatus(w.Status)
	if !ok {
		return models.Candidate{}, false
	}

	key := w.SectionID.String()
	if key == "" {
		key = w.ID.String()
	}

	student := models.Student{
		ID:             w.StudentNo,
		StudentNumber:  w.StudentNo,
		AcademicStatus: models.AcademicStatusActive,
	}
	if d := w.StudentDetails; d != nil {
		student.RegistrationNumber = d.RegistrationNo
		if d.StudentNo != "" {
			student.StudentNumber = d.StudentNo
		}
		if d.Biodata != nil {
			student.Surname = d.Biodata.Surname
			student.OtherNames = d.Biodata.OtherNames
			student.Email = d.Biodata.Email
			student.PhoneNumber = d.Biodata.PhoneNo
		}
		if d.CourseDetails != nil && d.CourseDetails.Course != nil {
			student.Course = models.Course{
				Code:  d.CourseDetails.Course.CourseCode,
				Title: d.CourseDetails.Course.CourseTitle,
			}
		}
	}

	candidate := models.Candidate{
		Student: student,
		Clearance: models.ClearanceRequest{
			ID:            w.ID.String(),
			ClearanceKey:  key,
			StudentID:     student.ID,
			StudentNumber: w.StudentNo,
			AcademicYear:  w.AccYrTitle,
			Status:        status,
			SubmittedAt:   requiredTime(w.CreatedOn),
		},
		RejectionLogs: make([]models.RejectionLog, 0, len(w.RejectionLogs)),
	}

	for _, log := range w.RejectionLogs {
		candidate.RejectionLogs = append(candidate.RejectionLogs, models.RejectionLog{
			ClearanceID:    log.ClearanceID.String(),
			Reason:         log.RejectReason,
			RejectedAt:     requiredTime(log.RejectedAt),
			RejectedBy:     log.RejectedBy.String(),
			RejectedByUser: log.RejectedByUser,
		})
	}
	sort.SliceStable(candidate.RejectionLogs, func(i, j int) bool {
		return candidate.RejectionLogs[i].RejectedAt.After(candidate.RejectionLogs[j].RejectedAt)
	})
	if status == models.ClearanceStatusRejected && len(candidate.RejectionLogs) > 0 {
		latest := candidate.RejectionLogs[0]
		candidate.Clearance.RejectionReason = latest.Reason
		candidate.Clearance.ReviewedBy = latest.RejectedByUser
		reviewedAt := latest.RejectedAt
		candidate.Clearance.ReviewedAt = &reviewedAt
	}

	return candidate, true
}

type bookWire struct {
	ID       flexString `json:"id" validate:"required"`
	Title    string     `json:"title" validate:"required"`
	Author   string     `json:"author"`
	ISBN     string     `json:"isbn"`
	Category string     `json:"category"`
	Status   string     `json:"status" validate:"omitempty,oneof=available borrowed damaged lost"`
	Location string     `json:"location"`
	AddedAt  flexString `json:"added_at"`
}

func (w bookWire) toModel() models.Book {
	status := models.BookStatus(w.Status)
	if status == "" {
		status = models.BookStatusAvailable
	}
	return models.Book{
		ID:       w.ID.String(),
		Title:    w.Title,
		Author:   w.Author,
		ISBN:     w.ISBN,
		Category: w.Category,
		Status:   status,
		Location: w.Location,
		AddedAt:  requiredTime(w.AddedAt),
	}
}

type booksEnvelope struct {
	Books []bookWire `json:"library_books" validate:"dive"`
}

type borrowRecordWire struct {
	ID         flexString          `json:"id" validate:"required"`
	BookID     flexString          `json:"book_id"`
	StudentNo  flexString          `json:"student_no"`
	BorrowDate flexString          `json:"borrow_date"`
	DueDate    flexString          `json:"due_date"`
	ReturnDate flexString          `json:"return_date"`
	Status     string              `json:"status" validate:"required,oneof=active returned overdue"`
	Fine       decimal.NullDecimal `json:"fine"`
	Condition  string              `json:"condition" validate:"omitempty,oneof=good damaged lost"`
	Notes      string              `json:"notes"`
	Book       *bookWire           `json:"book"`
}

func (w borrowRecordWire) toModel() models.BorrowRecord {
	record := models.BorrowRecord{
		ID:         w.ID.String(),
		BookID:     w.BookID.String(),
		StudentID:  w.StudentNo.String(),
		BorrowDate: requiredTime(w.BorrowDate),
		DueDate:    requiredTime(w.DueDate),
		ReturnDate: optionalTime(w.ReturnDate),
		Status:     models.BorrowStatus(w.Status),
		Condition:  models.BorrowCondition(w.Condition),
		Notes:      w.Notes,
	}
	if w.Fine.Valid {
		amount := w.Fine.Decimal.Round(0).IntPart()
		record.Fine = &amount
	}
	if w.Book != nil {
		book := w.Book.toModel()
		record.Book = &book
		if record.BookID == "" {
			record.BookID = book.ID
		}
	}
	return record
}

type studentBorrowEnvelope struct {
	Records []borrowRecordWire `json:"student_borrow_records" validate:"dive"`
}

type borrowEnvelope struct {
	Records []borrowRecordWire `json:"library_borrow_records" validate:"dive"`
}

type pastPaperWire struct {
	ID         flexString `json:"id" validate:"required"`
	Title      string     `json:"title" validate:"required"`
	CourseCode string     `json:"course_code"`
	Year       flexString `json:"year"`
	FileURL    string     `json:"file_url"`
	UploadedAt flexString `json:"uploaded_at"`
}

func (w pastPaperWire) toModel() models.PastPaper {
	year, _ := strconv.Atoi(w.Year.String())
	return models.PastPaper{
		ID:         w.ID.String(),
		Title:      w.Title,
		CourseCode: w.CourseCode,
		Year:       year,
		FileURL:    w.FileURL,
		UploadedAt: requiredTime(w.UploadedAt),
	}
}

type pastPapersEnvelope struct {
	Papers []pastPaperWire `json:"library_past_papers" validate:"dive"`
}

type decisionPayload struct {
	ClearanceID string `json:"clearance_id"`
	StudentNo   string `json:"student_no"`
	Status      string `json:"status,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

type mutationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
