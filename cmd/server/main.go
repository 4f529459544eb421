package main // Entry point package

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4" // Echo web framework
	"go.uber.org/zap"             // structured logging

	"github.com/iliyamo/cabin-reservation/internal/app"        // logger construction
	"github.com/iliyamo/cabin-reservation/internal/config"     // environment config loader
	"github.com/iliyamo/cabin-reservation/internal/database"   // MySQL pool and migrations
	"github.com/iliyamo/cabin-reservation/internal/handler"    // HTTP handlers
	"github.com/iliyamo/cabin-reservation/internal/middleware" // cache and rate limit middleware
	"github.com/iliyamo/cabin-reservation/internal/queue"      // reservation event consumer
	"github.com/iliyamo/cabin-reservation/internal/repository" // DB repositories
	"github.com/iliyamo/cabin-reservation/internal/router"     // route registration
)

func main() {
	cfg := config.Load() // Load environment config

	log := app.NewLogger(cfg.Env)
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatal("run migrations", zap.Error(err))
	}
	cancel()
	if v, err := database.Version(context.Background(), db); err == nil {
		log.Info("database ready", zap.Int64("schema_version", v))
	}

	rdb := config.NewRedisClient()
	defer func() { _ = rdb.Close() }()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	cabins := repository.NewCabinRepo(db)
	services := repository.NewServiceRepo(db)
	reservations := repository.NewReservationRepo(db)

	auth := handler.NewAuthHandler(cfg, users, tokens)
	catalog := handler.NewCatalogHandler(cabins, services)
	adminCabins := handler.NewAdminCabinHandler(cabins)
	adminServices := handler.NewAdminServiceHandler(services)
	bookings := handler.NewReservationHandler(cabins, services, reservations)

	e := echo.New() // Create Echo instance
	e.HideBanner = true

	// Rate limiting sits in front of everything; the response cache only
	// ever serves catalog GETs and skips the availability search.
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, cfg.JWTSecret)
	router.RegisterPublic(e, catalog)
	router.RegisterReservations(e, bookings, cfg.JWTSecret)
	router.RegisterAdmin(e, adminCabins, adminServices, cfg.JWTSecret)

	// Drain booking and cancellation events in the background.  The
	// consumer reconnects on its own; a broker outage never blocks HTTP.
	go func() {
		if err := queue.StartReservationConsumer(log); err != nil {
			log.Warn("reservation consumer stopped", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))

	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for SIGINT/SIGTERM, then give in-flight requests a grace period.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}
