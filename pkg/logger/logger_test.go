package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Darlington720/library-module/pkg/config"
	"github.com/Darlington720/library-module/pkg/middleware/requestid"
)

func TestNewHonoursFormat(t *testing.T) {
	l, err := New(&config.Config{Env: config.EnvDevelopment, Log: config.LogConfig{Level: "debug", Format: "console"}})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestGinMiddlewareLogsActorAndRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)

	r := gin.New()
	r.Use(requestid.Middleware(), GinMiddleware(zap.New(core)))
	r.GET("/clearances", func(c *gin.Context) {
		SetActor(c, "admin-1")
		c.Status(http.StatusBadGateway)
	})

	req := httptest.NewRequest(http.MethodGet, "/clearances", nil)
	req.Header.Set(requestid.Header, "abc")
	r.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "admin-1", fields["actor"])
	assert.Equal(t, "abc", fields["request_id"])
}
