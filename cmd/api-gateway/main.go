package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/Darlington720/library-module/api/swagger"
	"github.com/Darlington720/library-module/internal/gateway"
	"github.com/Darlington720/library-module/internal/handler"
	"github.com/Darlington720/library-module/internal/models"
	"github.com/Darlington720/library-module/internal/realtime"
	"github.com/Darlington720/library-module/internal/repository"
	"github.com/Darlington720/library-module/internal/service"
	"github.com/Darlington720/library-module/internal/view"
	"github.com/Darlington720/library-module/pkg/cache"
	"github.com/Darlington720/library-module/pkg/config"
	"github.com/Darlington720/library-module/pkg/database"
	"github.com/Darlington720/library-module/pkg/logger"
)

// @title Library Administration API
// @version 1.0.0
// @description Graduation clearance, catalogue and fines dashboard backed by the library GraphQL service
// @BasePath /api/v1
// @schemes http

const profileCacheTTL = time.Minute

type auditStore interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
	ListAuditLogs(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error)
}

type overrideStore interface {
	Append(ctx context.Context, override *models.ClearanceOverride) error
	Latest(ctx context.Context, clearanceID string) (*models.ClearanceOverride, error)
	ListByStudent(ctx context.Context, studentNumber string) ([]models.ClearanceOverride, error)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsSvc := service.NewMetricsService()
	probes := map[string]handler.ReadinessProbe{}

	var (
		db        *sqlx.DB
		audits    auditStore    = repository.NewMemoryAuditRepository()
		overrides overrideStore = repository.NewMemoryOverrideRepository()
	)
	if cfg.Database.Enabled {
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer db.Close()
		if err := database.EnsureSchema(ctx, db); err != nil {
			logr.Fatal("failed to prepare schema", zap.Error(err))
		}
		audits = repository.NewAuditRepository(db)
		overrides = repository.NewOverrideRepository(db)
		probes["postgres"] = db.PingContext
	} else {
		logr.Info("audit database disabled; audit log and override ledger kept in memory")
	}

	var (
		redisClient *redis.Client
		cacheRepo   service.CacheRepository
		guard       service.ActionGuard
	)
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		guard = service.NewActionGuard(repository.NewActionLockRepository(redisClient), cfg.Clearance.ActionLockTTL, logr)
		probes["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	} else {
		guard = service.NewActionGuard(nil, cfg.Clearance.ActionLockTTL, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cacheRepo != nil)

	library := gateway.NewClient(cfg.GraphQL, metricsSvc, logr)
	validate := validator.New()
	fineRule := service.FineRule{DefaultOverdueFine: cfg.Clearance.DefaultOverdueFine}

	var hub *realtime.Hub
	clearanceOpts := []service.ClearanceServiceOption{
		service.WithActionGuard(guard),
		service.WithClearanceMetrics(metricsSvc),
		service.WithFineRule(fineRule),
		service.WithOverrideTTL(cfg.Clearance.OverrideTTL),
	}
	if cfg.Realtime.Enabled {
		hub = realtime.NewHub(cfg.CORS.AllowedOrigins, metricsSvc, logr)
		go hub.Run(ctx)
		clearanceOpts = append(clearanceOpts, service.WithClearanceEvents(hub))
	}

	var dashboardSvc *service.DashboardService
	clearanceOpts = append(clearanceOpts, service.WithDashboardInvalidator(service.InvalidatorFunc(func(ctx context.Context) {
		dashboardSvc.InvalidateDashboard(ctx)
	})))
	clearanceSvc := service.NewClearanceService(library, overrides, audits, logr, clearanceOpts...)
	dashboardSvc = service.NewDashboardService(clearanceSvc, library, cacheSvc, service.DashboardServiceConfig{
		CacheTTL:     cfg.Dashboard.CacheTTL,
		FineRule:     fineRule,
		DisableCache: !cacheSvc.Enabled(),
	}, logr)
	sessionSvc := service.NewSessionService(library, audits, validate, logr, service.WithProfileCache(cacheSvc, profileCacheTTL))
	catalogSvc := service.NewCatalogService(library)
	finesSvc := service.NewFinesService(library, fineRule, cfg.Clearance.Currency)

	templates, err := view.Templates()
	if err != nil {
		logr.Fatal("failed to parse templates", zap.Error(err))
	}

	deps := routeDeps{
		cfg:       cfg,
		logger:    logr,
		metrics:   metricsSvc,
		templates: templates,
		audits:    audits,
		sessions:  sessionSvc,
		hub:       hub,
		handlers: handlers{
			session:     handler.NewSessionHandler(sessionSvc, cfg.Session),
			dashboard:   handler.NewDashboardHandler(dashboardSvc),
			clearance:   handler.NewClearanceHandler(clearanceSvc, service.NewExportService(clearanceSvc, nil, nil, logr)),
			catalog:     handler.NewCatalogHandler(catalogSvc, finesSvc),
			preferences: handler.NewPreferenceHandler(validate, cfg.UI, cfg.Session.CookieSecure),
			metrics:     handler.NewMetricsHandler(metricsSvc, probes),
		},
	}
	deps.handlers.ui = handler.NewUIHandler(handler.UIServices{
		Sessions:  sessionSvc,
		Dashboard: dashboardSvc,
		Catalog:   catalogSvc,
		Fines:     finesSvc,
		Clearance: clearanceSvc,
	}, deps.handlers.preferences, cfg, logr)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "graphql", cfg.GraphQL.Endpoint)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
