package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/fleetline/fleetline-api/api/swagger"
	"github.com/fleetline/fleetline-api/internal/dto"
	"github.com/fleetline/fleetline-api/internal/handler"
	"github.com/fleetline/fleetline-api/internal/mapping"
	"github.com/fleetline/fleetline-api/internal/middleware"
	"github.com/fleetline/fleetline-api/internal/repository"
	"github.com/fleetline/fleetline-api/internal/service"
	"github.com/fleetline/fleetline-api/pkg/cache"
	"github.com/fleetline/fleetline-api/pkg/config"
	"github.com/fleetline/fleetline-api/pkg/database"
	"github.com/fleetline/fleetline-api/pkg/jobs"
	"github.com/fleetline/fleetline-api/pkg/logger"
	corsmiddleware "github.com/fleetline/fleetline-api/pkg/middleware/cors"
	reqidmiddleware "github.com/fleetline/fleetline-api/pkg/middleware/requestid"
)

// @title Fleetline API
// @version 1.0.0
// @description Fleet scheduling backend: routes, recurring templates, daily instances and departure alerts
// @BasePath /api/v1
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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, board caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	driverRepo := repository.NewDriverRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	routeRepo := repository.NewRouteRepository(db)
	scheduleRepo := repository.NewRouteScheduleRepository(db)
	instanceRepo := repository.NewScheduleInstanceRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	distanceRepo := repository.NewRouteDistanceRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Board.CacheTTL, logr, redisClient != nil)

	driverSvc := service.NewDriverService(driverRepo, validate, logr)
	vehicleSvc := service.NewVehicleService(vehicleRepo, validate, logr)
	customerSvc := service.NewCustomerService(customerRepo, validate, logr)
	routeSvc := service.NewRouteService(routeRepo, customerRepo, validate, logr)
	scheduleSvc := service.NewRouteScheduleService(scheduleRepo, routeRepo, validate, logr)
	resolverSvc := service.NewResolverService(scheduleRepo, instanceRepo, cacheSvc, validate, logr)
	generatorSvc := service.NewGeneratorService(scheduleRepo, instanceRepo, cacheSvc, metricsSvc, validate, logr)
	conflictSvc := service.NewConflictService(instanceRepo, logr)

	alertQueue := jobs.NewQueue("departure-alerts", alertDeliveryHandler(logr), jobs.QueueConfig{
		Workers:    cfg.Notifier.QueueWorkers,
		MaxRetries: cfg.Notifier.QueueRetries,
		RetryDelay: cfg.Notifier.QueueRetryWait,
		Logger:     logr,
	})

	notifierSvc := service.NewNotifierService(instanceRepo, alertRepo, auditRepo, alertQueue, metricsSvc, cfg.Notifier, validate, logr)

	matrixClient := mapping.NewClient(cfg.Mapping, logr)
	distanceSvc := service.NewDistanceService(routeRepo, distanceRepo, matrixClient, cfg.Mapping, validate, logr)
	boardSvc := service.NewBoardService(boardRepo, cacheSvc, cfg.Board, logr)

	driverHandler := handler.NewDriverHandler(driverSvc)
	vehicleHandler := handler.NewVehicleHandler(vehicleSvc)
	customerHandler := handler.NewCustomerHandler(customerSvc)
	routeHandler := handler.NewRouteHandler(routeSvc, distanceSvc)
	scheduleHandler := handler.NewRouteScheduleHandler(scheduleSvc, resolverSvc)
	instanceHandler := handler.NewScheduleInstanceHandler(resolverSvc, notifierSvc)
	schedulerHandler := handler.NewSchedulerHandler(generatorSvc, conflictSvc, notifierSvc)
	boardHandler := handler.NewBoardHandler(boardSvc, cfg.Exports.Enabled)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		drivers := api.Group("/drivers")
		drivers.GET("", driverHandler.List)
		drivers.GET("/:id", driverHandler.Get)
		drivers.POST("", middleware.Audit(auditRepo, "driver.create", "drivers"), driverHandler.Create)
		drivers.PUT("/:id", middleware.Audit(auditRepo, "driver.update", "drivers"), driverHandler.Update)
		drivers.DELETE("/:id", middleware.Audit(auditRepo, "driver.deactivate", "drivers"), driverHandler.Delete)

		vehicles := api.Group("/vehicles")
		vehicles.GET("", vehicleHandler.List)
		vehicles.GET("/:id", vehicleHandler.Get)
		vehicles.POST("", middleware.Audit(auditRepo, "vehicle.create", "vehicles"), vehicleHandler.Create)
		vehicles.PUT("/:id", middleware.Audit(auditRepo, "vehicle.update", "vehicles"), vehicleHandler.Update)
		vehicles.DELETE("/:id", middleware.Audit(auditRepo, "vehicle.deactivate", "vehicles"), vehicleHandler.Delete)

		customers := api.Group("/customers")
		customers.GET("", customerHandler.List)
		customers.GET("/:id", customerHandler.Get)
		customers.POST("", middleware.Audit(auditRepo, "customer.create", "customers"), customerHandler.Create)
		customers.PUT("/:id", middleware.Audit(auditRepo, "customer.update", "customers"), customerHandler.Update)
		customers.DELETE("/:id", middleware.Audit(auditRepo, "customer.deactivate", "customers"), customerHandler.Delete)

		routes := api.Group("/routes")
		routes.GET("", routeHandler.List)
		routes.GET("/:id", routeHandler.Get)
		routes.POST("", middleware.Audit(auditRepo, "route.create", "routes"), routeHandler.Create)
		routes.PUT("/:id", middleware.Audit(auditRepo, "route.update", "routes"), routeHandler.Update)
		routes.DELETE("/:id", middleware.Audit(auditRepo, "route.deactivate", "routes"), routeHandler.Delete)
		routes.GET("/:id/distance", routeHandler.GetDistance)
		routes.POST("/distances/batch", routeHandler.BatchDistances)
		routes.POST("/distances/prune", middleware.Audit(auditRepo, "distance.prune", "route_distances"), routeHandler.PruneDistances)

		schedules := api.Group("/route-schedules")
		schedules.GET("", scheduleHandler.List)
		schedules.GET("/:id", scheduleHandler.Get)
		schedules.POST("", middleware.Audit(auditRepo, "route_schedule.create", "route_schedules"), scheduleHandler.Create)
		schedules.PUT("/:id", middleware.Audit(auditRepo, "route_schedule.update", "route_schedules"), scheduleHandler.Update)
		schedules.DELETE("/:id", middleware.Audit(auditRepo, "route_schedule.deactivate", "route_schedules"), scheduleHandler.Delete)
		schedules.POST("/:id/resolve", middleware.Audit(auditRepo, "schedule_instance.resolve", "schedule_instances"), scheduleHandler.Resolve)

		instances := api.Group("/schedule-instances")
		instances.GET("", instanceHandler.List)
		instances.GET("/:id", instanceHandler.Get)
		instances.PATCH("/:id/status", middleware.Audit(auditRepo, "schedule_instance.status", "schedule_instances"), instanceHandler.UpdateStatus)
		instances.GET("/:id/alerts", instanceHandler.ListAlerts)

		scheduler := api.Group("/scheduler")
		scheduler.POST("/generate", middleware.Audit(auditRepo, "scheduler.generate", "schedule_instances"), schedulerHandler.Generate)
		scheduler.GET("/conflicts", schedulerHandler.Conflicts)
		scheduler.POST("/notifications/run", schedulerHandler.RunNotifications)

		if cfg.Board.Enabled {
			board := api.Group("/board")
			board.GET("", boardHandler.List)
			board.POST("/refresh", middleware.Audit(auditRepo, "board.refresh", "schedule_board"), boardHandler.Refresh)
			board.GET("/export", boardHandler.Export)
		}

		api.GET("/metrics/snapshot", metricsHandler.Snapshot)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	alertQueue.Start(rootCtx)
	defer alertQueue.Stop()

	if cfg.Notifier.Enabled {
		go runNotifierLoop(rootCtx, notifierSvc, cfg.Notifier.Interval, logr)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

// alertDeliveryHandler fans queued alerts out to their channels. Dashboard
// delivery is a no-op since clients poll the alerts endpoint; other channels
// only log until their integrations land.
func alertDeliveryHandler(logr *zap.Logger) jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		logr.Sugar().Infow("alert dispatched", "job_id", job.ID, "type", job.Type)
		return nil
	}
}

func runNotifierLoop(ctx context.Context, notifier *service.NotifierService, interval time.Duration, logr *zap.Logger) {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			summary, err := notifier.Run(ctx, nil, dto.NotificationRunRequest{})
			if err != nil {
				logr.Sugar().Warnw("scheduled notifier run failed", "error", err)
				continue
			}
			logr.Sugar().Infow("notifier run complete",
				"instances_found", summary.InstancesFound,
				"alerts_created", summary.AlertsCreated,
				"skipped", summary.Skipped)
		}
	}
}
