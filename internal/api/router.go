package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/haulboard-be/internal/api/handlers"
	"github.com/isdelr/haulboard-be/internal/api/respond"
	"github.com/isdelr/haulboard-be/internal/apperr"
	"github.com/isdelr/haulboard-be/internal/auth"
	"github.com/isdelr/haulboard-be/internal/models"
	"github.com/isdelr/haulboard-be/internal/services"
	"github.com/isdelr/haulboard-be/internal/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// Dependencies bundles everything the router wires into handlers.
type Dependencies struct {
	Guard          *auth.Guard
	Users          services.UserServiceProvider
	Notifications  services.NotificationServiceProvider
	Shipments      services.ShipmentServiceProvider
	Drivers        services.DriverServiceProvider
	Events         services.EventServiceProvider
	Dashboard      services.DashboardServiceProvider
	Hub            *websocket.Hub
	Host           handlers.HostStats
	AllowedOrigins []string
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(requestIDLogger)
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, apperr.NotFound("route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(deps.Users, deps.Events, deps.Guard)
	userHandler := handlers.NewUserHandler(deps.Users, deps.Events)
	notificationHandler := handlers.NewNotificationHandler(deps.Notifications)
	shipmentHandler := handlers.NewShipmentHandler(deps.Shipments, deps.Events)
	driverHandler := handlers.NewDriverHandler(deps.Drivers, deps.Events)
	eventHandler := handlers.NewEventHandler(deps.Events)
	dashboardHandler := handlers.NewDashboardHandler(deps.Dashboard)
	systemHandler := handlers.NewSystemHandler(deps.Host)
	wsHandler := handlers.NewWebSocketHandler(deps.Hub, deps.AllowedOrigins)

	requireAuth := deps.Guard.RequireAuth
	admin := requireAuth(models.RoleAdmin)

	r.Get("/health", systemHandler.Health)

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/token", authHandler.Token)
			r.Post("/register", authHandler.Register)
			r.Post("/logout", authHandler.Logout)
			r.Get("/session", authHandler.Session)
		})

		// Everything below requires a resolved identity.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth())

			// WebSocket connection endpoint
			r.Get("/ws", wsHandler.Serve)

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", userHandler.GetMe)
				r.Put("/me", userHandler.UpdateMe)
				r.Put("/me/password", userHandler.ChangePassword)
				r.With(admin).Get("/", userHandler.List)
				r.With(admin).Put("/{id}/status", userHandler.SetStatus)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.With(admin).Post("/", notificationHandler.Create)
				r.Put("/mark-all-read", notificationHandler.MarkAllRead)
				r.Put("/{id}", notificationHandler.Update)
				r.Delete("/{id}", notificationHandler.Delete)
			})

			r.Route("/shipments", func(r chi.Router) {
				r.Get("/", shipmentHandler.GetAll)
				r.With(requireAuth(models.RoleIndividual, models.RoleCompany, models.RoleAdmin)).Post("/", shipmentHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", shipmentHandler.Get)
					r.Put("/status", shipmentHandler.UpdateStatus)
					r.Put("/driver", shipmentHandler.AssignDriver)
					r.Delete("/", shipmentHandler.Delete)
				})
			})

			r.Route("/drivers", func(r chi.Router) {
				r.Use(requireAuth(models.RoleCarrier, models.RoleCompany, models.RoleAdmin))
				r.Get("/", driverHandler.GetAll)
				r.Post("/", driverHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", driverHandler.Get)
					r.Put("/", driverHandler.Update)
					r.Delete("/", driverHandler.Delete)
				})
			})

			r.Get("/dashboard/stats", dashboardHandler.GetStats)

			r.With(admin).Get("/events", eventHandler.GetRecent)
			r.With(admin).Get("/admin/system", systemHandler.Stats)
		})
	})

	return r
}

// requestIDLogger attaches chi's request id to the request-scoped logger.
func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			logger := hlog.FromRequest(r)
			logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("request_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("Request handled")
}
