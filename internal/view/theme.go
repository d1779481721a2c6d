package view

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

const themeCookieMaxAge = 365 * 24 * 60 * 60

// NormaliseTheme falls back to fallback for anything but light or dark.
func NormaliseTheme(raw, fallback string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ThemeDark:
		return ThemeDark
	case ThemeLight:
		return ThemeLight
	}
	if fallback == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// ThemeFromRequest reads the persisted theme preference.
func ThemeFromRequest(c *gin.Context, key, fallback string) string {
	raw, err := c.Cookie(key)
	if err != nil {
		return NormaliseTheme("", fallback)
	}
	return NormaliseTheme(raw, fallback)
}

// PersistTheme stores the theme preference for a year.
func PersistTheme(c *gin.Context, key, theme string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(key, NormaliseTheme(theme, ThemeLight), themeCookieMaxAge, "/", "", secure, false)
}
