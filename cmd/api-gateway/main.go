package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/JAMAutoLtd/customer-portal-sub001/api/swagger"
	"github.com/JAMAutoLtd/customer-portal-sub001/internal/handler"
	"github.com/JAMAutoLtd/customer-portal-sub001/internal/middleware"
	"github.com/JAMAutoLtd/customer-portal-sub001/internal/repository"
	"github.com/JAMAutoLtd/customer-portal-sub001/internal/service"
	"github.com/JAMAutoLtd/customer-portal-sub001/pkg/cache"
	"github.com/JAMAutoLtd/customer-portal-sub001/pkg/config"
	"github.com/JAMAutoLtd/customer-portal-sub001/pkg/database"
	"github.com/JAMAutoLtd/customer-portal-sub001/pkg/locks"
	"github.com/JAMAutoLtd/customer-portal-sub001/pkg/logger"
	corsmiddleware "github.com/JAMAutoLtd/customer-portal-sub001/pkg/middleware/cors"
	reqidmiddleware "github.com/JAMAutoLtd/customer-portal-sub001/pkg/middleware/requestid"
)

// @title Field Service Scheduling API
// @version 1.0.0
// @description Replan trigger and job state for the field-service scheduling engine
// @BasePath /
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
	}

	technicianRepo := repository.NewTechnicianRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	jobRepo := repository.NewJobRepository(db)

	metricsSvc := service.NewMetricsService()
	replanLock := locks.NewMutex(redisClient, "replan:lock", cfg.Scheduler.LockTTL)
	replanSvc := service.NewReplanService(
		technicianRepo,
		availabilityRepo,
		equipmentRepo,
		orderRepo,
		jobRepo,
		db,
		replanLock,
		metricsSvc,
		nil,
		logr,
		service.ReplanConfig{
			Enabled:           cfg.Scheduler.Enabled,
			HorizonDays:       cfg.Scheduler.HorizonDays,
			PriorityDirection: cfg.Scheduler.PriorityDirection,
			RunTimeout:        cfg.Scheduler.RunTimeout,
		},
	)
	jobSvc := service.NewJobService(jobRepo)

	replanHandler := handler.NewReplanHandler(replanSvc)
	jobHandler := handler.NewJobHandler(jobSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/run-replan", replanHandler.Run)
	api.GET("/jobs", jobHandler.List)
	api.GET("/jobs/:id", jobHandler.Get)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
