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

	"promoPilot/app/echo-server/router"
	"promoPilot/business/bandit"
	"promoPilot/business/feedback"
	"promoPilot/business/reservation"
	"promoPilot/business/saturation"
	"promoPilot/internal/jobs"
	"promoPilot/internal/middleware"
	psqlRepo "promoPilot/internal/repository/postgres"
	redisRepo "promoPilot/internal/repository/redis"
	"promoPilot/internal/rest"
	"promoPilot/pkg/config"
	"promoPilot/pkg/database"
	redisdb "promoPilot/pkg/database/redis"
	"promoPilot/pkg/logger"
	"promoPilot/pkg/metrics"
	"promoPilot/pkg/utils"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting promoPilot", "version", cfg.App.Version)

	utils.InitJWT(cfg.JWT.SecretKey)
	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	// Redis is optional; without it saturation queries just recompute
	var snapshotCache saturation.SnapshotCache
	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, snapshot caching disabled", "error", err)
	} else {
		snapshotCache = redisRepo.NewSnapshotCache(redisClient, time.Hour)
	}

	// Init repo
	captionRepo := psqlRepo.NewCaptionRepository(db)
	statRepo := psqlRepo.NewStatRepository(db)
	reservationRepo := psqlRepo.NewReservationRepository(db)
	outcomeRepo := psqlRepo.NewOutcomeRepository(db)
	eventRepo := psqlRepo.NewSelectionEventRepository(db)
	cfgRepo := psqlRepo.NewSelectionConfigRepository(db)
	holidayRepo := psqlRepo.NewHolidayRepository(db)

	// Init service
	banditCfg := bandit.DefaultConfig()
	sampler := bandit.NewSampler()

	selectionService := bandit.NewSelectionService(
		captionRepo,
		reservationRepo,
		reservationRepo,
		eventRepo,
		cfgRepo,
		sampler,
		banditCfg,
	)
	lockerService := reservation.NewLockerService(reservationRepo)
	sweeper := reservation.NewSweeper(reservationRepo)
	feedbackService := feedback.NewService(outcomeRepo, statRepo, banditCfg, cfg.Jobs.FeedbackWorkers)
	saturationService := saturation.NewService(outcomeRepo, holidayRepo, snapshotCache)

	// Init handler
	selectionHandler := rest.NewSelectionHandler(selectionService)
	reservationHandler := rest.NewReservationHandler(lockerService)
	saturationHandler := rest.NewSaturationHandler(saturationService)
	adminHandler := rest.NewAdminHandler(cfgRepo, feedbackService, sweeper)

	// Background jobs
	scheduler := jobs.NewScheduler(cfg.Jobs,
		func(ctx context.Context) error {
			_, err := feedbackService.Run(ctx)
			return err
		},
		func(ctx context.Context) {
			sweeper.Sweep(ctx)
		},
	)
	scheduler.Start()

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.TraceMiddleware())

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Setup routes
	api := e.Group("/api/v1")
	router.SetSelectionRoutes(api, selectionHandler)
	router.SetReservationRoutes(api, reservationHandler)
	router.SetSaturationRoutes(api, saturationHandler)
	router.SetAdminRoutes(api, adminHandler)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if redisClient != nil {
		_ = redisdb.CloseRedisClient(redisClient)
	}

	logger.Info("Server stopped")
}
