package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/haulboard-be/internal/api"
	"github.com/isdelr/haulboard-be/internal/auth"
	"github.com/isdelr/haulboard-be/internal/config"
	"github.com/isdelr/haulboard-be/internal/database"
	"github.com/isdelr/haulboard-be/internal/logger"
	"github.com/isdelr/haulboard-be/internal/monitoring"
	"github.com/isdelr/haulboard-be/internal/services"
	"github.com/isdelr/haulboard-be/internal/websocket"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// A missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel, cfg.IsProduction())

	// Set up database
	ctx := context.Background()
	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up auth
	denylist := auth.NewDenylist()
	codec := auth.NewTokenCodec(cfg.JWTSecret, cfg.TokenTTL, auth.WithDenylist(denylist))
	hasher := auth.NewHasher(cfg.BcryptCost)

	// Set up services
	userService := services.NewUserService(db, hasher)
	eventService := services.NewEventService(db)
	notificationService := services.NewNotificationService(db, hub)
	shipmentService := services.NewShipmentService(db, notificationService)
	driverService := services.NewDriverService(db)
	dashboardService := services.NewDashboardService(shipmentService, driverService, notificationService)

	guard := auth.NewGuard(auth.NewSessionStore(cfg.IsProduction(), cfg.TokenTTL), codec, userService)

	// Set up and run the background janitor
	janitor, err := monitoring.NewJanitor(cfg.JanitorSchedule, denylist, notificationService, cfg.NotificationRetention)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure janitor")
	}
	janitor.Start()

	// Set up and run the background host sampler
	hostSampler := monitoring.NewHostSampler(eventService, 15*time.Second)
	go hostSampler.Run()

	// Set up router
	router := api.NewRouter(api.Dependencies{
		Guard:          guard,
		Users:          userService,
		Notifications:  notificationService,
		Shipments:      shipmentService,
		Drivers:        driverService,
		Events:         eventService,
		Dashboard:      dashboardService,
		Hub:            hub,
		Host:           hostSampler,
		AllowedOrigins: cfg.CORSOrigins,
	})

	// Set up server
	srv := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.AppEnv).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	hostSampler.Stop()
	janitor.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	hub.Stop()

	log.Info().Msg("Server exiting")
}
