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

	_ "github.com/rotaworks/rota-api/api/swagger"
	"github.com/rotaworks/rota-api/internal/handler"
	"github.com/rotaworks/rota-api/internal/middleware"
	"github.com/rotaworks/rota-api/internal/models"
	"github.com/rotaworks/rota-api/internal/repository"
	"github.com/rotaworks/rota-api/internal/service"
	"github.com/rotaworks/rota-api/pkg/cache"
	"github.com/rotaworks/rota-api/pkg/config"
	"github.com/rotaworks/rota-api/pkg/database"
	"github.com/rotaworks/rota-api/pkg/jobs"
	"github.com/rotaworks/rota-api/pkg/logger"
	corsmiddleware "github.com/rotaworks/rota-api/pkg/middleware/cors"
	reqidmiddleware "github.com/rotaworks/rota-api/pkg/middleware/requestid"
)

// @title Rota API
// @version 1.0.0
// @description Retail workforce scheduling service
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
		logr.Sugar().Warnw("redis unavailable, roster caching disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()

	employeeRepo := repository.NewEmployeeRepository(db)
	absenceRepo := repository.NewAbsenceRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	coverageRepo := repository.NewCoverageRuleRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "rota-api",
	})

	rosterSvc := service.NewRosterService(
		employeeRepo,
		absenceRepo,
		availabilityRepo,
		coverageRepo,
		settingsRepo,
		scheduleRepo,
		cacheRepo,
		nil,
		nil,
		metricsSvc,
		validate,
		logr,
		service.RosterConfig{
			CacheTTL:           cfg.Scheduler.CacheTTL,
			AsyncThresholdDays: cfg.Scheduler.AsyncThresholdDays,
			MaxRangeDays:       cfg.Scheduler.MaxRangeDays,
		},
	)

	queue := jobs.NewQueue(service.RosterJobType, rosterSvc.HandleJob, jobs.QueueConfig{
		Workers: cfg.Scheduler.WorkerConcurrency,
		Logger:  logr,
	})
	rosterSvc.AttachQueue(queue)

	employeeSvc := service.NewEmployeeService(employeeRepo, rosterSvc, validate, logr)
	absenceSvc := service.NewAbsenceService(absenceRepo, employeeRepo, rosterSvc, validate, logr)
	availabilitySvc := service.NewAvailabilityService(availabilityRepo, employeeRepo, rosterSvc, validate, logr)
	coverageSvc := service.NewCoverageService(coverageRepo, rosterSvc, validate, logr)
	settingsSvc := service.NewSettingsService(settingsRepo, rosterSvc, validate, logr)
	exportSvc := service.NewExportService(rosterSvc, employeeRepo, cfg.Exports.Enabled, logr, nil, nil)

	authHandler := handler.NewAuthHandler(authSvc)
	employeeHandler := handler.NewEmployeeHandler(employeeSvc)
	absenceHandler := handler.NewAbsenceHandler(absenceSvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	coverageHandler := handler.NewCoverageHandler(coverageSvc)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	rosterHandler := handler.NewRosterHandler(rosterSvc, exportSvc)

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
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
			auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
		}

		protected := api.Group("", middleware.JWT(authSvc))
		{
			protected.GET("/employees", employeeHandler.List)
			protected.GET("/employees/:id", employeeHandler.Get)
			protected.GET("/employees/:id/availability", availabilityHandler.Get)
			protected.GET("/absences", absenceHandler.List)
			protected.GET("/coverage-rules", coverageHandler.ListRules)
			protected.GET("/recurring-rules", coverageHandler.ListRecurring)
			protected.GET("/settings", settingsHandler.Get)
			protected.GET("/roster/runs", rosterHandler.ListRuns)
			protected.GET("/roster/runs/:id", rosterHandler.GetRun)
			protected.GET("/roster/assignments", rosterHandler.ListAssignments)
			protected.GET("/roster/export", rosterHandler.Export)
		}

		managers := api.Group("", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleManager))
		{
			managers.POST("/employees", employeeHandler.Create)
			managers.PUT("/employees/:id", employeeHandler.Update)
			managers.DELETE("/employees/:id", employeeHandler.Deactivate)
			managers.PUT("/employees/:id/availability", availabilityHandler.Replace)
			managers.POST("/absences", absenceHandler.Create)
			managers.PUT("/absences/:id", absenceHandler.Update)
			managers.DELETE("/absences/:id", absenceHandler.Delete)
			managers.POST("/coverage-rules", coverageHandler.CreateRule)
			managers.PUT("/coverage-rules/:id", coverageHandler.UpdateRule)
			managers.DELETE("/coverage-rules/:id", coverageHandler.DeleteRule)
			managers.POST("/recurring-rules", coverageHandler.CreateRecurring)
			managers.PUT("/recurring-rules/:id", coverageHandler.UpdateRecurring)
			managers.DELETE("/recurring-rules/:id", coverageHandler.DeleteRecurring)
			managers.PUT("/settings", settingsHandler.Update)
			managers.POST("/roster/generate", rosterHandler.Generate)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue.Start(ctx)
	defer queue.Stop()

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

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}
