package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Darlington720/library-module/internal/models"
	"github.com/Darlington720/library-module/pkg/config"
	appErrors "github.com/Darlington720/library-module/pkg/errors"
	"github.com/Darlington720/library-module/pkg/logger"
	"github.com/Darlington720/library-module/pkg/response"
)

// ContextSessionKey is the gin context key storing the resolved session.
const ContextSessionKey = "currentSession"

type sessionResolver interface {
	Resolve(ctx context.Context, token, clientIP, userAgent string) (*models.Session, error)
}

// Session requires a valid session on API routes. Authentication failures
// clear the session cookie.
func Session(resolver sessionResolver, cookies config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := attachSession(c, resolver, cookies); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// UISession requires a valid session on page routes, redirecting to loginPath otherwise.
func UISession(resolver sessionResolver, cookies config.SessionConfig, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := attachSession(c, resolver, cookies); err != nil {
			if appErrors.KindOf(err) != appErrors.KindAuth {
				response.Error(c, err)
				c.Abort()
				return
			}
			c.Redirect(http.StatusSeeOther, loginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

func attachSession(c *gin.Context, resolver sessionResolver, cookies config.SessionConfig) error {
	token := tokenFromRequest(c, cookies.CookieName)
	if token == "" {
		return appErrors.Clone(appErrors.ErrUnauthorized, "missing session token")
	}
	session, err := resolver.Resolve(c.Request.Context(), token, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		if appErrors.KindOf(err) == appErrors.KindAuth {
			ClearSessionCookie(c, cookies)
		}
		return err
	}
	c.Set(ContextSessionKey, session)
	logger.SetActor(c, session.Actor())
	return nil
}

func tokenFromRequest(c *gin.Context, cookieName string) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookieName == "" {
		return ""
	}
	token, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(token)
}

// CurrentSession returns the session attached by Session or UISession.
func CurrentSession(c *gin.Context) (*models.Session, bool) {
	value, ok := c.Get(ContextSessionKey)
	if !ok {
		return nil, false
	}
	session, ok := value.(*models.Session)
	return session, ok && session != nil
}

// SetSessionCookie stores token in an HTTP-only cookie.
func SetSessionCookie(c *gin.Context, cookies config.SessionConfig, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookies.CookieName, token, int(cookies.CookieMaxAge.Seconds()), "/", "", cookies.CookieSecure, true)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context, cookies config.SessionConfig) {
	if cookies.CookieName == "" {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookies.CookieName, "", -1, "/", "", cookies.CookieSecure, true)
}
