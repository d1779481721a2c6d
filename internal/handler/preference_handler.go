package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Darlington720/library-module/internal/dto"
	"github.com/Darlington720/library-module/internal/view"
	"github.com/Darlington720/library-module/pkg/config"
	appErrors "github.com/Darlington720/library-module/pkg/errors"
	"github.com/Darlington720/library-module/pkg/response"
)

// PreferenceHandler persists per-browser UI preferences.
type PreferenceHandler struct {
	validator *validator.Validate
	ui        config.UIConfig
	secure    bool
}

// NewPreferenceHandler constructs the handler.
func NewPreferenceHandler(validate *validator.Validate, ui config.UIConfig, secure bool) *PreferenceHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &PreferenceHandler{validator: validate, ui: ui, secure: secure}
}

// Theme godoc
// @Summary Persist the UI theme
// @Tags Preferences
// @Accept json
// @Produce json
// @Param payload body dto.ThemeRequest true "Theme"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /preferences/theme [post]
func (h *PreferenceHandler) Theme(c *gin.Context) {
	theme, err := h.bindTheme(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	view.PersistTheme(c, h.ui.ThemeStorageKey, theme, h.secure)
	response.JSON(c, http.StatusOK, gin.H{"theme": theme, "storageKey": h.ui.ThemeStorageKey}, nil)
}

// Current returns the persisted theme, falling back to the configured default.
func (h *PreferenceHandler) Current(c *gin.Context) {
	theme := view.ThemeFromRequest(c, h.ui.ThemeStorageKey, h.ui.DefaultTheme)
	response.JSON(c, http.StatusOK, gin.H{"theme": theme, "storageKey": h.ui.ThemeStorageKey}, nil)
}

func (h *PreferenceHandler) bindTheme(c *gin.Context) (string, error) {
	var req dto.ThemeRequest
	if err := c.ShouldBind(&req); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid theme payload")
	}
	if err := h.validator.Struct(req); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "theme must be light or dark")
	}
	return view.NormaliseTheme(req.Theme, h.ui.DefaultTheme), nil
}
