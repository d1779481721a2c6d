package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Darlington720/library-module/internal/dto"
	"github.com/Darlington720/library-module/internal/middleware"
	"github.com/Darlington720/library-module/internal/models"
	"github.com/Darlington720/library-module/pkg/config"
	appErrors "github.com/Darlington720/library-module/pkg/errors"
	"github.com/Darlington720/library-module/pkg/response"
)

type sessionService interface {
	Start(ctx context.Context, req dto.StartSessionRequest, clientIP, userAgent string) (*models.Session, error)
	End(ctx context.Context, token string)
}

// SessionHandler exchanges provider tokens for session cookies.
type SessionHandler struct {
	service sessionService
	cookies config.SessionConfig
}

// NewSessionHandler constructs a session handler.
func NewSessionHandler(service sessionService, cookies config.SessionConfig) *SessionHandler {
	return &SessionHandler{service: service, cookies: cookies}
}

// Start godoc
// @Summary Start a session
// @Description Validate a bearer token issued by the auth provider and store it in an HTTP-only cookie
// @Tags Session
// @Accept json
// @Produce json
// @Param payload body dto.StartSessionRequest true "Token payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /session [post]
func (h *SessionHandler) Start(c *gin.Context) {
	var req dto.StartSessionRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
		return
	}
	session, err := h.service.Start(c.Request.Context(), req, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		if appErrors.KindOf(err) == appErrors.KindAuth {
			middleware.ClearSessionCookie(c, h.cookies)
		}
		response.Error(c, err)
		return
	}
	middleware.SetSessionCookie(c, h.cookies, session.Token)
	response.JSON(c, http.StatusOK, session, nil)
}

// Me godoc
// @Summary Current administrator
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /me [get]
func (h *SessionHandler) Me(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// End godoc
// @Summary End the session
// @Tags Session
// @Success 204
// @Router /session [delete]
func (h *SessionHandler) End(c *gin.Context) {
	if session := sessionFromContext(c); session != nil {
		h.service.End(c.Request.Context(), session.Token)
	}
	middleware.ClearSessionCookie(c, h.cookies)
	response.NoContent(c)
}
