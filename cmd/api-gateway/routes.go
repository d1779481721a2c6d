package main

import (
	"html/template"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/Darlington720/library-module/internal/handler"
	"github.com/Darlington720/library-module/internal/middleware"
	"github.com/Darlington720/library-module/internal/realtime"
	"github.com/Darlington720/library-module/internal/service"
	"github.com/Darlington720/library-module/pkg/config"
	"github.com/Darlington720/library-module/pkg/logger"
	corsmiddleware "github.com/Darlington720/library-module/pkg/middleware/cors"
	reqidmiddleware "github.com/Darlington720/library-module/pkg/middleware/requestid"
)

type handlers struct {
	session     *handler.SessionHandler
	dashboard   *handler.DashboardHandler
	clearance   *handler.ClearanceHandler
	catalog     *handler.CatalogHandler
	preferences *handler.PreferenceHandler
	metrics     *handler.MetricsHandler
	ui          *handler.UIHandler
}

type routeDeps struct {
	cfg       *config.Config
	logger    *zap.Logger
	metrics   *service.MetricsService
	templates *template.Template
	audits    auditStore
	sessions  *service.SessionService
	hub       *realtime.Hub
	handlers  handlers
}

func newRouter(d routeDeps) *gin.Engine {
	h := d.handlers

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(d.logger))
	r.Use(corsmiddleware.New(d.cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(d.metrics))
	r.Use(middleware.WithResponseMeta())
	r.SetHTMLTemplate(d.templates)

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)
	if d.hub != nil {
		r.GET("/ws", middleware.Session(d.sessions, d.cfg.Session), d.hub.ServeWs)
	}
	if d.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(d.cfg.APIPrefix)
	api.POST("/session", h.session.Start)
	api.POST("/preferences/theme", h.preferences.Theme)
	api.GET("/preferences/theme", h.preferences.Current)

	secured := api.Group("", middleware.Session(d.sessions, d.cfg.Session))
	secured.GET("/me", h.session.Me)
	secured.DELETE("/session", h.session.End)
	secured.GET("/dashboard", h.dashboard.Summary)
	secured.GET("/metrics/system", h.metrics.System)

	clearances := secured.Group("/clearances", middleware.RequireModule("/clearance"))
	clearances.GET("", h.clearance.List)
	clearances.GET("/stats", h.clearance.Stats)
	clearances.GET("/export", middleware.Audit(d.audits, "CLEARANCE_EXPORT", "clearance_report", d.logger), h.clearance.Export)
	clearances.GET("/:id", h.clearance.Detail)
	clearances.POST("/:id/approve", h.clearance.Approve)
	clearances.POST("/:id/reject", h.clearance.Reject)
	clearances.POST("/:id/override", h.clearance.Override)

	secured.GET("/books", middleware.RequireModule("/books"), h.catalog.Books)
	secured.GET("/borrowings", middleware.RequireModule("/borrowings"), h.catalog.Borrowings)
	secured.GET("/past-papers", middleware.RequireModule("/past-papers"), h.catalog.PastPapers)
	secured.GET("/fines", middleware.RequireModule("/fines"), h.catalog.Fines)

	r.GET(handler.LoginPath, h.ui.LoginPage)
	r.POST(handler.LoginPath, h.ui.Login)
	r.POST("/logout", h.ui.Logout)
	r.POST("/theme", h.ui.Theme)

	h.ui.RegisterPages(r, middleware.UISession(d.sessions, d.cfg.Session, handler.LoginPath))

	return r
}
