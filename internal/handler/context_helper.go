package handler

import (
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Darlington720/library-module/internal/middleware"
	"github.com/Darlington720/library-module/internal/models"
	appErrors "github.com/Darlington720/library-module/pkg/errors"
	"github.com/Darlington720/library-module/pkg/response"
)

func sessionFromContext(c *gin.Context) *models.Session {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		return nil
	}
	return session
}

// requireSession writes an unauthorized response when no session is attached.
func requireSession(c *gin.Context) (*models.Session, bool) {
	session := sessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return session, true
}

// bindOptional binds a JSON or form body, tolerating an empty one.
func bindOptional(c *gin.Context, dest interface{}) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBind(dest); err != nil && !errors.Is(err, io.EOF) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}
	return nil
}

func responseMeta(c *gin.Context) map[string]interface{} {
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	return meta
}

func queryParam(c *gin.Context, key string) string {
	return strings.TrimSpace(c.Query(key))
}
