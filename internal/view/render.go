package view

import (
	"embed"
	"html/template"

	"github.com/Darlington720/library-module/internal/dto"
	"github.com/Darlington720/library-module/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page is the data every template receives.
type Page struct {
	Title     string
	Path      string
	Theme     string
	ThemeKey  string
	Currency  string
	Nav       []NavItem
	Profile   *models.Profile
	Toast     *Toast
	RequestID string
	Data      interface{}
}

// ClearancePage backs the clearance table.
type ClearancePage struct {
	Overview *dto.ClearanceListResponse
}

// Detail tabs.
const (
	TabObligations = "obligations"
	TabHistory     = "history"
)

// ClearanceDetailPage backs the student profile view and its dialogs.
type ClearanceDetailPage struct {
	Detail   *dto.ClearanceDetail
	Dialog   ActionDialog
	Tab      string
	PhotoURL string
}

// NormaliseTab falls back to the obligations tab.
func NormaliseTab(raw string) string {
	if raw == TabHistory {
		return TabHistory
	}
	return TabObligations
}

// FuncMap exposes formatting helpers to templates.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"currency":       FormatCurrency,
		"number":         FormatNumber,
		"date":           FormatDate,
		"timestamp":      FormatTimestamp,
		"optionalDate":   FormatOptionalDate,
		"clearanceBadge": ClearanceBadge,
		"borrowBadge":    BorrowBadge,
		"bookBadge":      BookBadge,
		"initials":       Initials,
		"money":          FormatDecimal,
		"deref": func(v *int64) int64 {
			if v == nil {
				return 0
			}
			return *v
		},
	}
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("pages").Funcs(FuncMap()).ParseFS(templateFS, "templates/*.html")
}
