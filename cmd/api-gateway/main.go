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

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/dept-portal-api/api/swagger"
	"github.com/noah-isme/dept-portal-api/internal/handler"
	"github.com/noah-isme/dept-portal-api/internal/middleware"
	"github.com/noah-isme/dept-portal-api/internal/repository"
	"github.com/noah-isme/dept-portal-api/internal/service"
	"github.com/noah-isme/dept-portal-api/pkg/cache"
	"github.com/noah-isme/dept-portal-api/pkg/config"
	"github.com/noah-isme/dept-portal-api/pkg/database"
	"github.com/noah-isme/dept-portal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/dept-portal-api/pkg/middleware/cors"
	"github.com/noah-isme/dept-portal-api/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/noah-isme/dept-portal-api/pkg/middleware/requestid"
	"github.com/noah-isme/dept-portal-api/pkg/storage"
)

// @title Department Portal API
// @version 1.0.0
// @description Notices, announcements, class routines and feedback for a university department.
// @BasePath /api/v1
// @schemes http https
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

	ctx := context.Background()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		logr.Fatal("failed to apply schema", zap.Error(err))
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, public feed cache disabled", zap.Error(err))
		redisClient = nil
	}

	files, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logr.Fatal("failed to init attachment storage", zap.Error(err))
	}

	metricsSvc := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Announcements.PublicFeedCacheTTL, logr, cacheRepo.Enabled())

	announcementRepo := repository.NewAnnouncementRepository(db, metricsSvc)
	feedbackRepo := repository.NewFeedbackRepository(db, metricsSvc)
	directoryRepo := repository.NewDirectoryRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	authSvc := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
		Audience:          cfg.JWT.Audience,
	})

	validate := validator.New()
	announcementSvc := service.NewAnnouncementService(announcementRepo, service.AnnouncementServiceDeps{
		Files:     files,
		Cache:     cacheSvc,
		Directory: directoryRepo,
		Metrics:   metricsSvc,
	}, validate, logr, service.AnnouncementConfig{
		PublicFeedLimit:    cfg.Announcements.PublicFeedLimit,
		PublicFeedCacheTTL: cfg.Announcements.PublicFeedCacheTTL,
		ListLimit:          cfg.Announcements.ListLimit,
		MaxFileSizeBytes:   cfg.Storage.MaxFileSizeBytes,
	})
	feedbackSvc := service.NewFeedbackService(feedbackRepo, announcementRepo, directoryRepo, metricsSvc, validate, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.Metrics(metricsSvc))

	if cfg.Storage.Driver == config.StorageDriverLocal {
		r.Static(cfg.Storage.LocalPublicBase, cfg.Storage.LocalDir)
	}

	handler.Routes{
		Announcements: handler.NewAnnouncementHandler(announcementSvc, logr),
		Feedback:      handler.NewFeedbackHandler(feedbackSvc),
		Metrics:       handler.NewMetricsHandler(metricsSvc, db),
		Authenticate:  middleware.JWT(authSvc),
		PublicLimit:   ratelimit.Middleware(cfg.RateLimit.PublicRequests, cfg.RateLimit.PublicWindow),
		Audit:         auditRepo,
		Logger:        logr,
	}.Register(r, cfg.APIPrefix)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("forced shutdown", zap.Error(err))
	}
	logr.Info("server exited")
}
