package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/weekly-attendance-api/internal/handler"
	"github.com/noah-isme/weekly-attendance-api/internal/models"
	"github.com/noah-isme/weekly-attendance-api/internal/repository"
	"github.com/noah-isme/weekly-attendance-api/internal/service"
	"github.com/noah-isme/weekly-attendance-api/pkg/cache"
	"github.com/noah-isme/weekly-attendance-api/pkg/config"
	"github.com/noah-isme/weekly-attendance-api/pkg/database"
	"github.com/noah-isme/weekly-attendance-api/pkg/export"
	"github.com/noah-isme/weekly-attendance-api/pkg/jobs"
	"github.com/noah-isme/weekly-attendance-api/pkg/logger"
)

// @title Weekly Attendance API
// @version 1.0.0
// @description Weekly childcare attendance submissions with a time-restricted editing window.
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	checks := map[string]handler.Pinger{"postgres": db}

	var cacheRepo service.CacheRepository
	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, overview cache disabled", zap.Error(err))
	} else if redisClient != nil {
		defer redisClient.Close()
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		checks["redis"] = cache.Pinger{Client: redisClient}
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	submissions := repository.NewSubmissionRepository(db)
	users := repository.NewUserRepository(db)
	audits := repository.NewAuditRepository(db)
	configurations := repository.NewConfigurationRepository(db)

	defaults := models.TimeRestrictionPolicy{
		Enabled:           cfg.TimeRestriction.Enabled,
		BlockStartHour:    cfg.TimeRestriction.BlockStartHour,
		BlockEndHour:      cfg.TimeRestriction.BlockEndHour,
		BlockWeekdaysOnly: cfg.TimeRestriction.BlockWeekdaysOnly,
	}
	window := service.NewEditWindow(defaults, cfg.Location, logr, metrics)
	window.Subscribe(func(policy models.TimeRestrictionPolicy, version int64) {
		logr.Info("edit window policy active",
			zap.Int64("version", version),
			zap.Bool("enabled", policy.Enabled),
			zap.String("next_window", window.DescribeNextWindow(time.Now())),
		)
	})

	policies := service.NewPolicyService(configurations, window, audits, validate, logr, defaults)
	if _, err := policies.Load(ctx); err != nil {
		return fmt.Errorf("load time restriction policy: %w", err)
	}

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Submissions.OverviewCacheTTL, logr, cacheRepo != nil)
	submissionSvc := service.NewSubmissionService(submissions, window, service.NewEditAuditTracker(), audits, cacheSvc, metrics, validate, logr,
		service.SubmissionServiceConfig{
			LockArchived:     cfg.Submissions.LockArchived,
			OverviewCacheTTL: cfg.Submissions.OverviewCacheTTL,
		})
	exportSvc := service.NewExportService(submissions, logr, export.NewCSVExporter(export.WithDelimiter(cfg.Export.CSVDelimiter)), export.NewPDFExporter())
	authSvc := service.NewAuthService(users, audits, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	queue := jobs.NewQueue("maintenance", maintenanceHandler(submissionSvc, policies, logr), jobs.QueueConfig{
		Workers:    cfg.Sweep.Workers,
		MaxRetries: cfg.Sweep.MaxRetries,
		RetryDelay: cfg.Sweep.RetryDelay,
		Logger:     logr,
	})
	queue.Start(ctx)
	defer queue.Stop()
	if cfg.Sweep.Enabled {
		if err := queue.Every(cfg.Sweep.Interval, scheduledJob(jobArchiveSweep)); err != nil {
			return err
		}
	}
	if err := queue.Every(cfg.TimeRestriction.ReloadInterval, scheduledJob(jobPolicyReload)); err != nil {
		return err
	}

	router := newRouter(cfg, logr, routerDeps{
		metrics:     metrics,
		auth:        authSvc,
		submissions: handler.NewSubmissionHandler(submissionSvc, exportSvc),
		editWindow:  handler.NewEditWindowHandler(window, policies),
		login:       handler.NewAuthHandler(authSvc),
		health:      handler.NewMetricsHandler(metrics, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "timezone", cfg.Timezone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	logr.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
