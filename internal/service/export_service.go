package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Darlington720/library-module/internal/models"
	"github.com/Darlington720/library-module/internal/view"
	appErrors "github.com/Darlington720/library-module/pkg/errors"
	"github.com/Darlington720/library-module/pkg/export"
)

// Clearance report columns, in order.
var clearanceReportHeaders = []string{"Student No.", "Student Name", "Course", "Submitted Date", "Status", "Registration No."}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportFile is a rendered report ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
	Rows        int
}

// ExportService renders clearance reports.
type ExportService struct {
	clearances candidateLister
	csv        datasetRenderer
	pdf        datasetRenderer
	xlsx       datasetRenderer
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the
// CSV and PDF exporters; spreadsheets always use the XLSX exporter.
func NewExportService(clearances candidateLister, csv, pdf datasetRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		clearances: clearances,
		csv:        csv,
		pdf:        pdf,
		xlsx:       export.NewXLSXExporter(),
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ClearanceReport renders the clearance candidates matching query.
func (s *ExportService) ClearanceReport(ctx context.Context, session *models.Session, rawFormat, query string) (*ExportFile, error) {
	if session == nil {
		return nil, appErrors.ErrUnauthorized
	}
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv, pdf or xlsx")
	}
	candidates, err := s.clearances.List(ctx, session, query)
	if err != nil {
		return nil, err
	}

	now := s.now()
	dataset := ClearanceDataset(candidates)
	dataset.Subtitle = fmt.Sprintf("Generated %s by %s", view.FormatTimestamp(now), session.Profile.DisplayName())
	if q := strings.TrimSpace(query); q != "" {
		dataset.Subtitle += fmt.Sprintf(" (filter: %q)", q)
	}

	var body []byte
	switch format {
	case export.FormatPDF:
		body, err = s.pdf.Render(dataset)
	case export.FormatXLSX:
		body, err = s.xlsx.Render(dataset)
	default:
		body, err = s.csv.Render(dataset)
	}
	if err != nil {
		s.logger.Error("failed to render clearance report", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("clearance_report_%s.%s", now.Format("20060102_150405"), format.Extension()),
		ContentType: format.ContentType(),
		Body:        body,
		Rows:        len(dataset.Rows),
	}, nil
}

// ClearanceDataset tabulates candidates for export.
func ClearanceDataset(candidates []models.Candidate) export.Dataset {
	rows := make([]map[string]string, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, map[string]string{
			"Student No.":      c.Student.StudentNumber,
			"Student Name":     c.Student.Name(),
			"Course":           c.Student.Course.Code,
			"Submitted Date":   view.FormatDate(c.Clearance.SubmittedAt),
			"Status":           view.ClearanceBadge(c.Clearance.Status).Label,
			"Registration No.": c.Student.RegistrationNumber,
		})
	}
	return export.Dataset{
		Title:   "Graduation Clearance Report",
		Headers: clearanceReportHeaders,
		Rows:    rows,
	}
}
