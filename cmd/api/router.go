package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/weekly-attendance-api/api/swagger"
	"github.com/noah-isme/weekly-attendance-api/internal/handler"
	"github.com/noah-isme/weekly-attendance-api/internal/middleware"
	"github.com/noah-isme/weekly-attendance-api/internal/models"
	"github.com/noah-isme/weekly-attendance-api/internal/service"
	"github.com/noah-isme/weekly-attendance-api/pkg/config"
	"github.com/noah-isme/weekly-attendance-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/weekly-attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/weekly-attendance-api/pkg/middleware/requestid"
)

type routerDeps struct {
	metrics     *service.MetricsService
	auth        middleware.TokenValidator
	submissions *handler.SubmissionHandler
	editWindow  *handler.EditWindowHandler
	login       *handler.AuthHandler
	health      *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metrics))

	r.GET("/health", deps.health.Health)
	r.GET("/ready", deps.health.Ready)
	r.GET("/metrics", deps.health.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", deps.login.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(deps.auth))
	secured.GET("/auth/me", deps.login.Me)
	secured.GET("/edit-window", deps.editWindow.Status)

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleStaff)

	submissions := secured.Group("/submissions")
	submissions.POST("", middleware.RequireRoles(models.RoleParent), deps.submissions.Create)
	submissions.GET("", deps.submissions.List)
	submissions.GET("/export", staff, deps.submissions.Export)
	submissions.POST("/archive-sweep", middleware.RequireRoles(models.RoleAdmin), deps.submissions.Sweep)
	submissions.GET("/:id", deps.submissions.Get)
	submissions.PUT("/:id", deps.submissions.Update)

	policy := secured.Group("/edit-window/policy")
	policy.GET("", middleware.RequireRoles(models.RoleAdmin), deps.editWindow.GetPolicy)
	policy.PUT("", middleware.RequireRoles(models.RoleAdmin), deps.editWindow.UpdatePolicy)

	return r
}
