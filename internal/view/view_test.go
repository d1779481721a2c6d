package view

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Darlington720/library-module/internal/dto"
	"github.com/Darlington720/library-module/internal/models"
	appErrors "github.com/Darlington720/library-module/pkg/errors"
)

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "UGX 25,000", FormatCurrency(25000, "UGX"))
	assert.Equal(t, "UGX 1,000", FormatCurrency(1000, ""))
	assert.Equal(t, "UGX 0", FormatCurrency(0, "UGX"))
	assert.Equal(t, "USD 1,234,567", FormatCurrency(1234567, "USD"))
	assert.Equal(t, "UGX 1,501", FormatDecimal(decimal.RequireFromString("1500.5"), "UGX"))
}

func TestFormatDates(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC)
	assert.Equal(t, "Mar 5, 2024", FormatDate(ts))
	assert.Equal(t, "Mar 5, 2024, 02:07 PM", FormatTimestamp(ts))
	assert.Equal(t, "N/A", FormatDate(time.Time{}))
	assert.Equal(t, "N/A", FormatOptionalDate(nil))
	assert.Equal(t, "Mar 5, 2024", FormatOptionalDate(&ts))
}

func TestFormatEpoch(t *testing.T) {
	assert.Equal(t, "Jun 1, 2024", FormatEpoch("1717200000000"))
	assert.Equal(t, "N/A", FormatEpoch("not a date"))
	assert.Equal(t, "N/A", FormatEpoch(""))
}

func TestInitialsAndPhotoURL(t *testing.T) {
	assert.Equal(t, "SJ", Initials("Smith Jane Mary"))
	assert.Equal(t, "ÉÖ", Initials("Émile Ögwang"))
	assert.Equal(t, "ÉK", Initials("élodie kato nantale"))
	assert.Equal(t, "", Initials("  "))
	assert.Equal(t, "https://photos.example/2000100.jpg", PhotoURL("https://photos.example/%s.jpg", "2000100"))
	assert.Equal(t, "https://photos.example/2000100", PhotoURL("https://photos.example/", "2000100"))
	assert.Empty(t, PhotoURL("", "2000100"))
}

func TestClearanceBadge(t *testing.T) {
	assert.Equal(t, Badge{Label: "Pending", Variant: VariantNeutral}, ClearanceBadge(models.ClearanceStatusPending))
	assert.Equal(t, VariantSuccess, ClearanceBadge(models.ClearanceStatusApproved).Variant)
	assert.Equal(t, VariantDanger, ClearanceBadge(models.ClearanceStatusRejected).Variant)
	assert.Equal(t, VariantWarning, ClearanceBadge(models.ClearanceStatusDisqualified).Variant)
}

func TestBorrowBadgeConditionWins(t *testing.T) {
	assert.Equal(t, "Lost", BorrowBadge(models.BorrowRecord{Status: models.BorrowStatusReturned, Condition: models.ConditionLost}).Label)
	assert.Equal(t, "Damaged", BorrowBadge(models.BorrowRecord{Status: models.BorrowStatusOverdue, Condition: models.ConditionDamaged}).Label)
	assert.Equal(t, "Overdue", BorrowBadge(models.BorrowRecord{Status: models.BorrowStatusOverdue}).Label)
	assert.Equal(t, "Returned", BorrowBadge(models.BorrowRecord{Status: models.BorrowStatusReturned, Condition: models.ConditionGood}).Label)
	assert.Equal(t, "Borrowed", BorrowBadge(models.BorrowRecord{Status: models.BorrowStatusActive}).Label)
}

func TestActionDialogSuccessClosesAndResets(t *testing.T) {
	d := OpenDialog("reject")
	require.True(t, d.Submit("missing thesis copy"))
	assert.True(t, d.Busy)
	assert.False(t, d.Submit("again"))

	d.Resolve(nil)
	assert.False(t, d.Open)
	assert.False(t, d.Busy)
	assert.Equal(t, "", d.Reason)
}

func TestActionDialogFailureKeepsReason(t *testing.T) {
	d := OpenDialog("reject")
	d.Submit("missing thesis copy")
	d.Resolve(appErrors.Clone(appErrors.ErrUpstream, "database unavailable"))

	assert.True(t, d.Open)
	assert.False(t, d.Busy)
	assert.Equal(t, "missing thesis copy", d.Reason)
	assert.Equal(t, "database unavailable", d.Error)
	assert.True(t, d.CanSubmit())

	blank := OpenDialog("override")
	blank.Reason = "   "
	assert.False(t, blank.CanSubmit())
}

func TestErrorToast(t *testing.T) {
	toast := ErrorToast(appErrors.Clone(appErrors.ErrValidation, "Reason Required"))
	require.NotNil(t, toast)
	assert.Equal(t, ToastDestructive, toast.Variant)
	assert.Equal(t, "Validation Error", toast.Title)
	assert.Equal(t, "Reason Required", toast.Description)
	assert.Equal(t, "Network Error", ErrorToast(appErrors.ErrUpstream).Title)
	assert.Nil(t, ErrorToast(nil))
}

func TestNavRailFiltersModules(t *testing.T) {
	profile := models.Profile{Role: models.Role{Modules: []models.Module{
		{Route: "/clearance"},
		{Route: "fines"},
	}}}
	items := NavRail(profile, "/clearance/S-1")
	titles := make([]string, 0, len(items))
	for _, item := range items {
		titles = append(titles, item.Title)
	}
	assert.Equal(t, []string{"Dashboard", "Clearance", "Fines"}, titles)
	assert.True(t, items[1].Active)
	assert.False(t, items[0].Active)

	assert.Len(t, NavRail(models.Profile{}, "/"), 7)
}

func TestThemeCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, ThemeLight, ThemeFromRequest(c, "nkumba-theme", "light"))

	PersistTheme(c, "nkumba-theme", "DARK", false)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "nkumba-theme", cookies[0].Name)
	assert.Equal(t, ThemeDark, cookies[0].Value)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "nkumba-theme", Value: "dark"})
	c2, _ := gin.CreateTestContext(httptest.NewRecorder())
	c2.Request = req
	assert.Equal(t, ThemeDark, ThemeFromRequest(c2, "nkumba-theme", "light"))
	assert.Equal(t, ThemeLight, NormaliseTheme("purple", "light"))
}

func TestTemplatesRenderDetail(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	fine := int64(15000)
	detail := &dto.ClearanceDetail{
		Candidate: models.Candidate{
			Clearance: models.ClearanceRequest{ClearanceKey: "S-1", Status: models.ClearanceStatusPending, HasUnpaidFines: true},
			Student:   models.Student{Surname: "Smith", OtherNames: "Jane", StudentNumber: "2000101"},
		},
		BorrowRecords: []models.BorrowRecord{{ID: "b1", BookID: "bk-1", Status: models.BorrowStatusOverdue, Fine: &fine}},
		Obligations:   models.ObligationSummary{ActiveLoans: 1, OverdueBooks: 1, TotalFine: 15000},
	}
	page := Page{
		Title:    "Smith Jane",
		Theme:    ThemeDark,
		Currency: "UGX",
		Profile:  &models.Profile{Surname: "Admin"},
		Data:     ClearanceDetailPage{Detail: detail, Tab: TabObligations},
	}

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "clearance_detail.html", page))
	html := buf.String()
	assert.Contains(t, html, "UGX 15,000")
	assert.Contains(t, html, "Overdue")
	assert.Contains(t, html, `class="dark"`)
	assert.Contains(t, html, "disabled")

	page.Data = ClearanceDetailPage{Detail: detail, Tab: TabHistory}
	buf.Reset()
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "clearance_detail.html", page))
	assert.Contains(t, buf.String(), "No rejection history")
	assert.NotContains(t, buf.String(), "Overrides")

	detail.OverrideHistory = []models.ClearanceOverride{{Reason: "senate decision", ApprovedBy: "admin-2", ApprovedAt: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)}}
	page.Data = ClearanceDetailPage{Detail: detail, Tab: TabHistory}
	buf.Reset()
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "clearance_detail.html", page))
	assert.Contains(t, buf.String(), "senate decision")
	assert.Contains(t, buf.String(), "by admin-2")
}

func TestTemplatesRenderEveryPage(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)
	pages := map[string]interface{}{
		"login.html":       map[string]string{"LoginURL": "https://auth.example"},
		"dashboard.html":   dto.DashboardSummary{},
		"books.html":       []models.Book{{Title: "Go in Action", Status: models.BookStatusAvailable}},
		"borrowings.html":  []models.BorrowRecord{{BookID: "bk-1", Status: models.BorrowStatusActive}},
		"past_papers.html": []models.PastPaper{{Title: "Algorithms", Year: 2023}},
		"clearance.html":   ClearancePage{Overview: &dto.ClearanceListResponse{}},
		"fines.html":       dto.FinesReport{Currency: "UGX", Total: decimal.NewFromInt(2000)},
		"reports.html":     models.ClearanceStats{Total: 3},
		"error.html":       nil,
	}
	for name, data := range pages {
		var buf bytes.Buffer
		err := tmpl.ExecuteTemplate(&buf, name, Page{Title: "t", Currency: "UGX", Data: data})
		assert.NoError(t, err, name)
	}
}

func TestNormaliseTab(t *testing.T) {
	assert.Equal(t, TabHistory, NormaliseTab("history"))
	assert.Equal(t, TabObligations, NormaliseTab("other"))
}
