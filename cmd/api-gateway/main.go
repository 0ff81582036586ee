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
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/journal-desk-api/api/swagger"
	"github.com/noah-isme/journal-desk-api/internal/handler"
	internalmiddleware "github.com/noah-isme/journal-desk-api/internal/middleware"
	"github.com/noah-isme/journal-desk-api/internal/models"
	"github.com/noah-isme/journal-desk-api/internal/repository"
	"github.com/noah-isme/journal-desk-api/internal/service"
	"github.com/noah-isme/journal-desk-api/internal/session"
	"github.com/noah-isme/journal-desk-api/internal/upstream"
	"github.com/noah-isme/journal-desk-api/internal/validation"
	"github.com/noah-isme/journal-desk-api/pkg/cache"
	"github.com/noah-isme/journal-desk-api/pkg/config"
	"github.com/noah-isme/journal-desk-api/pkg/database"
	"github.com/noah-isme/journal-desk-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/journal-desk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/journal-desk-api/pkg/middleware/requestid"
)

// @title Journal Desk API
// @version 1.0.0
// @description Role-scoped admin gateway in front of the journal backend
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	models.SetWallClockZone(cfg.Dashboard.Location())

	metricsSvc := service.NewMetricsService()
	checks := map[string]handler.ReadinessCheck{}

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.String("addr", cache.Addr(cfg.Redis)), zap.Error(err))
		} else {
			repo := repository.NewCacheRepository(redisClient, cfg.Cache.KeyPrefix, logr)
			defer repo.Close() //nolint:errcheck
			cacheRepo = repo
			checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.DefaultTTL, logr, cacheRepo != nil)

	tokens := session.NewTokenStore(cacheSvc, cfg.Session.RevokeTTL, logr)
	authSvc := service.NewAuthService(service.AuthConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer}, tokens, logr)

	backend := upstream.New(upstream.Options{
		BaseURL:        cfg.Upstream.BaseURL,
		Timeout:        cfg.Upstream.Timeout,
		Observer:       metricsSvc,
		Logger:         logr,
		OnUnauthorized: tokens.Revoke,
	})

	validator := validation.New(validation.FileLimits{
		MaxDocumentBytes: cfg.Articles.MaxDocumentBytes,
		MaxImageBytes:    cfg.Articles.MaxImageBytes,
	})

	articleSvc := service.NewArticleService(service.ArticleServiceParams{
		Articles:  backend,
		Journals:  backend,
		Users:     backend,
		Submitter: backend,
		Validator: validator,
		Logger:    logr,
	})
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Backend: backend,
		Cache:   cacheSvc,
		Metrics: metricsSvc,
		Logger:  logr,
		Config: service.DashboardServiceConfig{
			CacheTTL:   cfg.Dashboard.CacheTTL,
			StrictJoin: cfg.Dashboard.StrictJoin,
			Location:   cfg.Dashboard.Location(),
		},
	})
	commentSvc := service.NewCommentService(backend, articleSvc, validator, logr)
	journalSvc := service.NewJournalService(backend, cacheSvc, validator, logr)
	notificationSvc := service.NewNotificationService(backend, cacheSvc, validator, cfg.Notifications.ViewTTL, logr)
	auditSvc := service.NewAuditService(backend)
	userSvc := service.NewUserService(backend, validator, logr)
	exportSvc := service.NewExportService(dashboardSvc, logr)

	var (
		snapshotSvc *service.SnapshotService
		db          *sqlx.DB
	)
	if cfg.Snapshots.Enabled {
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Warn("postgres unavailable, snapshots disabled", zap.Error(err))
		} else if err := database.EnsureSchema(ctx, db); err != nil {
			logr.Warn("snapshot schema not ready, snapshots disabled", zap.Error(err))
			_ = db.Close()
			db = nil
		}
	}
	if db != nil {
		defer db.Close() //nolint:errcheck
		checks["postgres"] = db.PingContext
		snapshotSvc = service.NewSnapshotService(repository.NewSnapshotRepository(db), dashboardSvc, metricsSvc, validator, service.SnapshotServiceConfig{
			Cron:         cfg.Snapshots.Cron,
			ServiceToken: cfg.Upstream.ServiceToken,
			Workers:      cfg.Snapshots.Workers,
			Retries:      cfg.Snapshots.Retries,
			Location:     cfg.Dashboard.Location(),
		}, logr)
		if err := snapshotSvc.Start(ctx); err != nil {
			logr.Fatal("failed to start snapshots", zap.Error(err))
		}
		defer snapshotSvc.Stop()
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.Articles.MaxDocumentBytes
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	dashboardHandler := handler.NewDashboardHandler(dashboardSvc, exportSvc)
	articleHandler := handler.NewArticleHandler(articleSvc, commentSvc)
	journalHandler := handler.NewJournalHandler(journalSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	auditHandler := handler.NewAuditHandler(auditSvc)
	userHandler := handler.NewUserHandler(userSvc)
	snapshotHandler := handler.NewSnapshotHandler(nil)
	if snapshotSvc != nil {
		snapshotHandler = handler.NewSnapshotHandler(snapshotSvc)
	}

	superAdmin := internalmiddleware.RequireRoles(models.RoleSuperAdmin)

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.JWT(authSvc), internalmiddleware.WithResponseMeta())
	{
		api.GET("/dashboard", dashboardHandler.Overview)
		api.GET("/dashboard/trends", dashboardHandler.Trends)
		api.GET("/dashboard/trends/export", dashboardHandler.Export)

		api.GET("/articles", articleHandler.List)
		api.POST("/articles",
			internalmiddleware.RequireRoles(models.RoleAuthor, models.RoleEditor, models.RoleJournalAdmin),
			internalmiddleware.Audit(logr, "article.submit"),
			articleHandler.Submit)
		api.GET("/articles/:id/timeline", articleHandler.Timeline)
		api.GET("/articles/:id/comments", articleHandler.Comments)
		api.POST("/articles/:id/comments",
			internalmiddleware.RequireRoles(models.RoleEditor, models.RoleJournalAdmin, models.RoleSuperAdmin),
			internalmiddleware.Audit(logr, "comment.create"),
			articleHandler.CreateComment)

		api.GET("/journals", internalmiddleware.RequireRoles(models.RoleJournalAdmin, models.RoleSuperAdmin), journalHandler.List)
		api.PUT("/journals/:id/status", superAdmin, internalmiddleware.Audit(logr, "journal.status"), journalHandler.UpdateStatus)

		api.GET("/notifications", notificationHandler.List)
		api.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		api.POST("/notifications",
			internalmiddleware.RequireRoles(models.RoleSuperAdmin, models.RoleJournalAdmin),
			internalmiddleware.Audit(logr, "notification.create"),
			notificationHandler.Create)

		api.GET("/audit-logs", superAdmin, auditHandler.List)
		api.POST("/users", superAdmin, internalmiddleware.Audit(logr, "user.create"), userHandler.Create)

		api.GET("/snapshots", superAdmin, snapshotHandler.List)
		api.POST("/snapshots", superAdmin, internalmiddleware.Audit(logr, "snapshot.capture"), snapshotHandler.Capture)

		api.GET("/metrics/summary", superAdmin, metricsHandler.Summary)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "upstream", cfg.Upstream.BaseURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("server forced to shutdown", zap.Error(err))
	}
}
