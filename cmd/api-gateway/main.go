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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/tutor-sessions-api/api/swagger"
	"github.com/noah-isme/tutor-sessions-api/internal/handler"
	"github.com/noah-isme/tutor-sessions-api/internal/middleware"
	"github.com/noah-isme/tutor-sessions-api/internal/repository"
	"github.com/noah-isme/tutor-sessions-api/internal/service"
	"github.com/noah-isme/tutor-sessions-api/pkg/cache"
	"github.com/noah-isme/tutor-sessions-api/pkg/config"
	"github.com/noah-isme/tutor-sessions-api/pkg/database"
	"github.com/noah-isme/tutor-sessions-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/tutor-sessions-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/tutor-sessions-api/pkg/middleware/requestid"
	"github.com/noah-isme/tutor-sessions-api/pkg/roomtoken"
)

// @title Tutor Sessions API
// @version 1.0.0
// @description Session scheduling, booking and live-room access for the tutoring marketplace
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, logr); err != nil {
			logr.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if cfg.SlotCache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, slot cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
		}
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	availabilityRepo := repository.NewAvailabilityRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	directoryRepo := repository.NewDirectoryRepository(db)
	requestRepo := repository.NewRequestRepository(db)

	checks := map[string]handler.Pinger{"postgres": db}
	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient)
		cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.SlotCache.TTL, logr, true)
		checks["redis"] = cacheRepo
	}

	slotSvc := service.NewSlotService(courseRepo, availabilityRepo, sessionRepo, directoryRepo, service.SlotConfig{
		Stride:          cfg.Scheduling.SlotStride,
		MaxResults:      cfg.Scheduling.MaxSuggestions,
		DefaultTimezone: cfg.Scheduling.DefaultTimezone,
		CacheTTL:        cfg.SlotCache.TTL,
	}, logr, service.WithSlotCache(cacheSvc), service.WithSlotMetrics(metrics))

	authSvc := service.NewAuthService(logr, service.AuthConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	})
	availabilitySvc := service.NewAvailabilityService(availabilityRepo, slotSvc, validate, logr)
	sessionSvc := service.NewSessionService(sessionRepo, courseRepo, availabilityRepo, directoryRepo,
		cfg.Scheduling.DefaultTimezone, validate, logr,
		service.WithSessionSlotInvalidator(slotSvc),
		service.WithSessionMetrics(metrics),
	)
	bookingSvc := service.NewBookingService(bookingRepo, sessionRepo, courseRepo, logr, service.WithBookingMetrics(metrics))
	requestSvc := service.NewRequestService(requestRepo, sessionRepo, courseRepo, bookingSvc, validate, logr,
		service.WithRequestSlotInvalidator(slotSvc),
		service.WithRequestMetrics(metrics),
	)
	issuer := roomtoken.NewIssuer(cfg.LiveRoom.WSURL, cfg.LiveRoom.APIKey, cfg.LiveRoom.APISecret, cfg.LiveRoom.TokenTTL)
	if !issuer.Configured() {
		logr.Warn("live room provider is not configured; room-token requests will fail")
	}
	roomSvc := service.NewRoomService(sessionRepo, bookingRepo, directoryRepo, issuer, service.RoomConfig{
		JoinWindow: cfg.Scheduling.JoinWindow,
		TokenTTL:   cfg.LiveRoom.TokenTTL,
	}, logr, service.WithRoomMetrics(metrics), service.WithRoomCourses(courseRepo))
	exportSvc := service.NewExportService(sessionRepo, directoryRepo, cfg.Scheduling.DefaultTimezone, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	registerRoutes(r, cfg, routeHandlers{
		auth:         middleware.JWT(authSvc),
		availability: handler.NewAvailabilityHandler(availabilitySvc),
		sessions:     handler.NewSessionHandler(sessionSvc, slotSvc, exportSvc),
		bookings:     handler.NewBookingHandler(bookingSvc),
		requests:     handler.NewRequestHandler(requestSvc),
		rooms:        handler.NewRoomHandler(roomSvc),
		ops:          handler.NewMetricsHandler(metrics, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
