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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/assist-scheduler-api/api/swagger"
	"github.com/noah-isme/assist-scheduler-api/internal/handler"
	"github.com/noah-isme/assist-scheduler-api/internal/repository"
	"github.com/noah-isme/assist-scheduler-api/internal/scheduling"
	"github.com/noah-isme/assist-scheduler-api/internal/service"
	"github.com/noah-isme/assist-scheduler-api/pkg/cache"
	"github.com/noah-isme/assist-scheduler-api/pkg/config"
	"github.com/noah-isme/assist-scheduler-api/pkg/database"
	"github.com/noah-isme/assist-scheduler-api/pkg/logger"
)

// @title Assist Scheduler API
// @version 1.0.0
// @description Course scheduling: conflict checks, auto-scheduling and weekly timetables.
// @BasePath /
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	var redisClient redis.UniversalClient
	if cfg.Timetable.CacheEnabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, timetable cache disabled", zap.Error(err))
		} else {
			redisClient = client
		}
	}

	validate := validator.New()
	metrics := service.NewMetricsService()
	locker := scheduling.NewKeyLocker()

	scheduleRepo := repository.NewScheduleRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Timetable.CacheTTL, logr, redisClient != nil)
	timetableSvc := service.NewTimetableService(scheduleRepo, sectionRepo, facultyRepo, roomRepo, cacheSvc, cfg.Timetable.CacheTTL, logr)
	policy := scheduling.ConflictPolicy{EscalateFaculty: cfg.Scheduler.EscalateFaculty, EscalateRoom: cfg.Scheduler.EscalateRoom}
	scheduleSvc := service.NewScheduleService(scheduleRepo, locker, policy, timetableSvc, metrics, validate, logr)
	generatorSvc := service.NewScheduleGeneratorService(
		sectionRepo,
		courseRepo,
		facultyRepo,
		roomRepo,
		scheduleRepo,
		scheduling.NewPicker(cfg.Scheduler.Strategy, cfg.Scheduler.Seed),
		locker,
		cfg.Scheduler.MaxAttempts,
		timetableSvc,
		metrics,
		validate,
		logr,
	)
	sectionSvc := service.NewSectionService(sectionRepo, validate)

	pingers := map[string]database.Pinger{"postgres": db}
	if redisClient != nil {
		pingers["redis"] = cache.Pinger{Client: redisClient}
	}

	r := newRouter(routerDeps{
		cfg:       cfg,
		logger:    logr,
		metrics:   metrics,
		verifier:  service.NewTokenService(cfg.JWT),
		ready:     func(ctx context.Context) error { return database.Ready(ctx, pingers) },
		schedules: handler.NewScheduleHandler(scheduleSvc),
		generator: handler.NewScheduleGeneratorHandler(generatorSvc),
		sections:  handler.NewSectionHandler(sectionSvc),
		timetable: handler.NewTimetableHandler(timetableSvc),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
