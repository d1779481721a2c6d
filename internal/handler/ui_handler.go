package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Darlington720/library-module/internal/dto"
	"github.com/Darlington720/library-module/internal/middleware"
	"github.com/Darlington720/library-module/internal/models"
	"github.com/Darlington720/library-module/internal/view"
	"github.com/Darlington720/library-module/pkg/config"
	appErrors "github.com/Darlington720/library-module/pkg/errors"
	"github.com/Darlington720/library-module/pkg/middleware/requestid"
)

// LoginPath is where unauthenticated page requests are sent.
const LoginPath = "/login"

// UIServices groups the services behind the server-rendered pages.
type UIServices struct {
	Sessions  sessionService
	Dashboard dashboardService
	Catalog   catalogService
	Fines     finesService
	Clearance clearanceService
}

// UIHandler renders the administrator dashboard pages.
type UIHandler struct {
	services    UIServices
	preferences *PreferenceHandler
	session     config.SessionConfig
	ui          config.UIConfig
	currency    string
	logger      *zap.Logger
}

// NewUIHandler constructs the page handler.
func NewUIHandler(services UIServices, preferences *PreferenceHandler, cfg *config.Config, logger *zap.Logger) *UIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UIHandler{
		services:    services,
		preferences: preferences,
		session:     cfg.Session,
		ui:          cfg.UI,
		currency:    cfg.Clearance.Currency,
		logger:      logger,
	}
}

// RegisterPages mounts the signed-in pages on r behind session. Module pages
// refuse roles that do not enable them, the same as the JSON API.
func (h *UIHandler) RegisterPages(r gin.IRouter, session gin.HandlerFunc) {
	pages := r.Group("/", session)
	pages.GET("", h.Dashboard)
	pages.GET("books", h.requireModule("/books"), h.Books)
	pages.GET("borrowings", h.requireModule("/borrowings"), h.Borrowings)
	pages.GET("past-papers", h.requireModule("/past-papers"), h.PastPapers)
	pages.GET("fines", h.requireModule("/fines"), h.Fines)
	pages.GET("reports", h.requireModule("/reports"), h.Reports)

	clearance := pages.Group("clearance", h.requireModule("/clearance"))
	clearance.GET("", h.Clearances)
	clearance.GET("/:id", h.ClearanceDetail)
	clearance.POST("/:id/:action", h.ClearanceAction)
}

func (h *UIHandler) requireModule(route string) gin.HandlerFunc {
	return middleware.RequirePageModule(route, h.renderError)
}

// LoginPage renders the sign-in form.
func (h *UIHandler) LoginPage(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", "Sign in", h.loginData(), nil)
}

// Login exchanges the submitted token for a session cookie.
func (h *UIHandler) Login(c *gin.Context) {
	var req dto.StartSessionRequest
	_ = c.ShouldBind(&req)
	session, err := h.services.Sessions.Start(c.Request.Context(), req, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		if appErrors.KindOf(err) == appErrors.KindAuth {
			middleware.ClearSessionCookie(c, h.session)
		}
		h.render(c, appErrors.FromError(err).Status, "login.html", "Sign in", h.loginData(), view.ErrorToast(err))
		return
	}
	middleware.SetSessionCookie(c, h.session, session.Token)
	c.Redirect(http.StatusSeeOther, "/")
}

// Logout ends the session and returns to the sign-in page.
func (h *UIHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.session.CookieName); err == nil && token != "" {
		h.services.Sessions.End(c.Request.Context(), token)
	}
	middleware.ClearSessionCookie(c, h.session)
	c.Redirect(http.StatusSeeOther, LoginPath)
}

// Theme toggles the theme and returns to the referring page.
func (h *UIHandler) Theme(c *gin.Context) {
	if theme, err := h.preferences.bindTheme(c); err == nil {
		view.PersistTheme(c, h.ui.ThemeStorageKey, theme, h.session.CookieSecure)
	}
	c.Redirect(http.StatusSeeOther, backTo(c.GetHeader("Referer")))
}

// Dashboard renders the landing page.
func (h *UIHandler) Dashboard(c *gin.Context) {
	session := sessionFromContext(c)
	summary, _, err := h.services.Dashboard.Summary(c.Request.Context(), session)
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, http.StatusOK, "dashboard.html", "Dashboard", summary, nil)
}

// Books renders the catalogue.
func (h *UIHandler) Books(c *gin.Context) {
	books, err := h.services.Catalog.Books(c.Request.Context(), sessionFromContext(c), models.BookFilter{
		Search: queryParam(c, "q"),
		Status: models.BookStatus(queryParam(c, "status")),
	})
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, http.StatusOK, "books.html", "Books", books, nil)
}

// Borrowings renders the loan list.
func (h *UIHandler) Borrowings(c *gin.Context) {
	records, err := h.services.Catalog.Borrowings(c.Request.Context(), sessionFromContext(c), models.BorrowFilter{
		Status:        models.BorrowStatus(queryParam(c, "status")),
		StudentNumber: queryParam(c, "student"),
	})
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, http.StatusOK, "borrowings.html", "Borrowings", records, nil)
}

// PastPapers renders the past paper archive.
func (h *UIHandler) PastPapers(c *gin.Context) {
	papers, err := h.services.Catalog.PastPapers(c.Request.Context(), sessionFromContext(c), queryParam(c, "q"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, http.StatusOK, "past_papers.html", "Past Papers", papers, nil)
}

// Fines renders outstanding fines.
func (h *UIHandler) Fines(c *gin.Context) {
	report, err := h.services.Fines.Report(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, http.StatusOK, "fines.html", "Fines", report, nil)
}

// Reports renders the export page with clearance totals.
func (h *UIHandler) Reports(c *gin.Context) {
	stats, err := h.services.Clearance.Stats(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, http.StatusOK, "reports.html", "Reports", stats, nil)
}

// Clearances renders the clearance table.
func (h *UIHandler) Clearances(c *gin.Context) {
	overview, err := h.services.Clearance.Overview(c.Request.Context(), sessionFromContext(c), queryParam(c, "q"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, http.StatusOK, "clearance.html", "Graduation Clearance", view.ClearancePage{Overview: overview}, nil)
}

// ClearanceDetail renders a student's clearance profile. The dialog query
// opens the reject or override dialog.
func (h *UIHandler) ClearanceDetail(c *gin.Context) {
	var dialog view.ActionDialog
	switch models.ClearanceAction(c.Query("dialog")) {
	case models.ClearanceActionReject:
		dialog = view.OpenDialog(string(models.ClearanceActionReject))
	case models.ClearanceActionOverride:
		dialog = view.OpenDialog(string(models.ClearanceActionOverride))
	}
	h.renderDetail(c, http.StatusOK, dialog, nil)
}

// ClearanceAction applies a decision submitted from the detail page and
// re-renders it. Failed reject or override submissions keep the dialog open
// with the typed reason.
func (h *UIHandler) ClearanceAction(c *gin.Context) {
	session := sessionFromContext(c)
	ctx := c.Request.Context()
	id := c.Param("id")
	action := models.ClearanceAction(c.Param("action"))

	var req dto.ClearanceDecisionRequest
	_ = c.ShouldBind(&req)

	var (
		result *dto.ClearanceDecisionResult
		err    error
		dialog view.ActionDialog
	)
	switch action {
	case models.ClearanceActionApprove:
		result, err = h.services.Clearance.Approve(ctx, session, id)
	case models.ClearanceActionReject, models.ClearanceActionOverride:
		dialog = view.OpenDialog(string(action))
		dialog.Submit(req.Reason)
		if action == models.ClearanceActionReject {
			result, err = h.services.Clearance.Reject(ctx, session, id, req.Reason)
		} else {
			result, err = h.services.Clearance.Override(ctx, session, id, req.Reason)
		}
		dialog.Resolve(err)
	default:
		h.renderError(c, appErrors.Clone(appErrors.ErrNotFound, "unknown clearance action"))
		return
	}

	if err != nil {
		h.logger.Warn("clearance action failed", zap.String("action", string(action)), zap.String("clearance", id), zap.Error(err))
		if appErrors.KindOf(err) == appErrors.KindAuth {
			h.expire(c)
			return
		}
		h.renderDetail(c, appErrors.FromError(err).Status, dialog, view.ErrorToast(err))
		return
	}
	h.renderDetail(c, http.StatusOK, dialog, view.SuccessToast(result.Title, result.Message))
}

func (h *UIHandler) renderDetail(c *gin.Context, status int, dialog view.ActionDialog, toast *view.Toast) {
	detail, err := h.services.Clearance.Detail(c.Request.Context(), sessionFromContext(c), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	page := view.ClearanceDetailPage{
		Detail:   detail,
		Dialog:   dialog,
		Tab:      view.NormaliseTab(c.Query("tab")),
		PhotoURL: view.PhotoURL(h.ui.StudentPhotoURL, detail.Candidate.Student.StudentNumber),
	}
	h.render(c, status, "clearance_detail.html", detail.Candidate.Student.Name(), page, toast)
}

func (h *UIHandler) renderError(c *gin.Context, err error) {
	if appErrors.KindOf(err) == appErrors.KindAuth && !appErrors.Is(err, appErrors.ErrForbidden) {
		h.expire(c)
		return
	}
	appErr := appErrors.FromError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error("page render failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	h.render(c, appErr.Status, "error.html", http.StatusText(appErr.Status), nil, view.ErrorToast(err))
}

func (h *UIHandler) expire(c *gin.Context) {
	middleware.ClearSessionCookie(c, h.session)
	c.Redirect(http.StatusSeeOther, LoginPath)
}

func (h *UIHandler) render(c *gin.Context, status int, name, title string, data interface{}, toast *view.Toast) {
	page := view.Page{
		Title:     title,
		Path:      c.Request.URL.Path,
		Theme:     view.ThemeFromRequest(c, h.ui.ThemeStorageKey, h.ui.DefaultTheme),
		ThemeKey:  h.ui.ThemeStorageKey,
		Currency:  h.currency,
		Toast:     toast,
		RequestID: requestid.Value(c),
		Data:      data,
	}
	if session := sessionFromContext(c); session != nil {
		profile := session.Profile
		page.Profile = &profile
		page.Nav = view.NavRail(profile, c.Request.URL.Path)
	}
	c.Header("Cache-Control", "no-store")
	c.HTML(status, name, page)
}

func (h *UIHandler) loginData() map[string]string {
	return map[string]string{"LoginURL": h.session.LoginURL}
}

// backTo keeps redirects on this host.
func backTo(referer string) string {
	if referer == "" {
		return "/"
	}
	u, err := url.Parse(referer)
	if err != nil || u.Path == "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	if strings.HasPrefix(u.Path, "//") || strings.HasPrefix(u.Path, "/\\") {
		return "/"
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}
