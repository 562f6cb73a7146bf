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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-timetable-api/api/swagger"
	"github.com/noah-isme/sma-timetable-api/internal/handler"
	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/repository"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/pkg/cache"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
	"github.com/noah-isme/sma-timetable-api/pkg/database"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/requestid"
)

// @title Timetable API
// @version 1.0.0
// @description Weekly lesson scheduling with teacher, group and room conflict detection
// @BasePath /api/v1
// @schemes http

type lessonStore interface {
	ListByOrganization(ctx context.Context, organizationID string) ([]models.Lesson, error)
	FindByID(ctx context.Context, id string) (*models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	Update(ctx context.Context, lesson *models.Lesson) error
	Delete(ctx context.Context, id string) error
}

type settingsStore interface {
	Get(ctx context.Context, organizationID string) (*models.OrganizationSettings, error)
	Upsert(ctx context.Context, settings *models.OrganizationSettings) error
}

type settingsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
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

	validate := validator.New()
	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	checks := map[string]handler.Pinger{}

	var (
		lessonRepo   lessonStore
		settingsRepo settingsStore
		locker       service.OrganizationLocker
		db           *sqlx.DB
	)
	switch cfg.Scheduling.StorageBackend {
	case config.StoragePostgres:
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer db.Close()
		if cfg.Database.AutoMigrate {
			if err := database.Migrate(context.Background(), db); err != nil {
				logr.Fatal("failed to migrate schema", zap.Error(err))
			}
		}
		lessonRepo = repository.NewLessonRepository(db)
		settingsRepo = repository.NewOrganizationSettingsRepository(db)
		locker = repository.NewAdvisoryLocker(db, cfg.Scheduling.LockTimeout)
		checks["postgres"] = db
	default:
		lessonRepo = repository.NewMemoryLessonRepository()
		settingsRepo = repository.NewMemoryOrganizationSettingsRepository()
		locker = repository.NewKeyedMutex(cfg.Scheduling.LockTimeout)
	}

	var orgCache settingsCache
	if cfg.Scheduling.OrgConfigCache {
		client, err := cache.NewRedis(context.Background(), cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, organization settings cache disabled", zap.Error(err))
		} else {
			cacheRepo := repository.NewCacheRepository(client.Client, logr)
			defer cacheRepo.Close() //nolint:errcheck
			orgCache = cacheRepo
			checks["redis"] = client
		}
	}

	settingsSvc := service.NewOrganizationSettingsService(settingsRepo, orgCache, metrics, validate, logr, service.OrganizationSettingsServiceConfig{
		DefaultRoomTracking: cfg.Scheduling.RoomTrackingDefault,
		CacheEnabled:        orgCache != nil,
		CacheTTL:            cfg.Scheduling.OrgConfigCacheTTL,
	})
	lessonSvc := service.NewLessonService(lessonRepo, locker, settingsSvc, metrics, validate, logr)
	availabilitySvc := service.NewAvailabilityService(lessonRepo, settingsSvc, validate)
	exportSvc := service.NewExportService(lessonSvc, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Lessons:  handler.NewLessonHandler(lessonSvc, availabilitySvc, exportSvc),
		Settings: handler.NewOrganizationSettingsHandler(settingsSvc),
		Metrics:  handler.NewMetricsHandler(metrics, checks),
	}, cfg.Metrics.Enabled)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "storage", cfg.Scheduling.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
