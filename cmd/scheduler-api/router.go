package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/assist-scheduler-api/internal/handler"
	internalmiddleware "github.com/noah-isme/assist-scheduler-api/internal/middleware"
	"github.com/noah-isme/assist-scheduler-api/internal/models"
	"github.com/noah-isme/assist-scheduler-api/internal/service"
	"github.com/noah-isme/assist-scheduler-api/pkg/config"
	"github.com/noah-isme/assist-scheduler-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/assist-scheduler-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/assist-scheduler-api/pkg/middleware/requestid"
)

type routerDeps struct {
	cfg       *config.Config
	logger    *zap.Logger
	metrics   *service.MetricsService
	verifier  internalmiddleware.TokenVerifier
	ready     handler.ReadinessCheck
	schedules *handler.ScheduleHandler
	generator *handler.ScheduleGeneratorHandler
	sections  *handler.SectionHandler
	timetable *handler.TimetableHandler
}

func newRouter(deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.logger))
	r.Use(corsmiddleware.New(deps.cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(deps.metrics))

	ops := handler.NewMetricsHandler(deps.metrics, deps.ready)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)

	if deps.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(deps.cfg.APIPrefix)
	api.Use(internalmiddleware.JWT(deps.verifier))

	readers := internalmiddleware.RBAC(models.RoleAdmin, models.RoleFaculty)
	admins := internalmiddleware.RBAC(models.RoleAdmin)

	schedules := api.Group("/schedules")
	schedules.GET("", readers, deps.schedules.List)
	schedules.POST("/check", admins, deps.schedules.Check)
	schedules.GET("/:id", readers, deps.schedules.Get)
	schedules.POST("", admins, deps.schedules.Create)
	schedules.PUT("/:id", admins, deps.schedules.Update)
	schedules.DELETE("/:id", admins, deps.schedules.Delete)

	sections := api.Group("/sections")
	sections.GET("/:id", readers, deps.sections.Get)
	sections.PATCH("/:id/schedule-status", admins, deps.sections.UpdateScheduleStatus)
	if deps.cfg.Scheduler.Enabled && deps.generator != nil {
		sections.POST("/:id/schedules/generate", admins, deps.generator.Generate)
	}

	timetables := api.Group("/timetables")
	timetables.GET("/:kind/:id", readers, deps.timetable.Get)
	timetables.GET("/:kind/:id/export", readers, deps.timetable.Export)

	return r
}
