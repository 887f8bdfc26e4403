package http

import (
	"context"
	"net/http"
	"time"

	"clinic-scheduling-api/internal/delivery/http/handler"
	"clinic-scheduling-api/internal/delivery/http/middleware"
	"clinic-scheduling-api/pkg/response"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Router struct {
	router             *mux.Router
	log                *logrus.Logger
	slotHandler        *handler.SlotHandler
	appointmentHandler *handler.AppointmentHandler
	providerHandler    *handler.ProviderHandler
	auditLogHandler    *handler.AuditLogHandler
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
	bookingLimiter     middleware.Limiter
	db                 Pinger
}

func NewRouter(
	log *logrus.Logger,
	slotHandler *handler.SlotHandler,
	appointmentHandler *handler.AppointmentHandler,
	providerHandler *handler.ProviderHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	bookingLimiter middleware.Limiter,
	db Pinger,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		log:                log,
		slotHandler:        slotHandler,
		appointmentHandler: appointmentHandler,
		providerHandler:    providerHandler,
		auditLogHandler:    auditLogHandler,
		authMiddleware:     authMiddleware,
		corsMiddleware:     corsMiddleware,
		bookingLimiter:     bookingLimiter,
		db:                 db,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)
	api.HandleFunc("/slots", r.slotHandler.ListSlots).Methods(http.MethodGet)

	// Public provider reads; a token is only needed for /providers/me/...
	api.Handle("/providers/{id}/schedule", r.authMiddleware.Optional(http.HandlerFunc(r.providerHandler.GetSchedule))).Methods(http.MethodGet)
	api.Handle("/providers/{id}/availability", r.authMiddleware.Optional(http.HandlerFunc(r.providerHandler.GetAvailability))).Methods(http.MethodGet)

	// Bookings (any authenticated role; the usecase checks ownership)
	bookings := api.PathPrefix("/bookings").Subrouter()
	bookings.Use(r.authMiddleware.Authenticate)
	bookings.HandleFunc("", r.appointmentHandler.ListAppointments).Methods(http.MethodGet)
	bookings.HandleFunc("/{id}", r.appointmentHandler.GetAppointment).Methods(http.MethodGet)
	bookings.HandleFunc("/{id}", r.appointmentHandler.UpdateStatus).Methods(http.MethodPatch)
	bookings.HandleFunc("/{id}", r.appointmentHandler.CancelBooking).Methods(http.MethodDelete)

	create := http.Handler(http.HandlerFunc(r.appointmentHandler.CreateBooking))
	if r.bookingLimiter != nil {
		create = middleware.RateLimit(r.bookingLimiter, r.log)(create)
	}
	bookings.Handle("", middleware.RequirePatient(create)).Methods(http.MethodPost)

	// Availability management (provider owner or admin)
	availability := api.PathPrefix("/providers/{id}/availability").Subrouter()
	availability.Use(r.authMiddleware.Authenticate)
	availability.Use(middleware.RequireProviderOrAdmin)
	availability.HandleFunc("", r.providerHandler.SetWeekly).Methods(http.MethodPut)
	availability.HandleFunc("/{weekday}", r.providerHandler.SetDay).Methods(http.MethodPut)

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Preflight requests must match a route for the middleware below to run.
	r.router.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	r.router.Use(middleware.WithRequestID)
	r.router.Use(middleware.AccessLog(r.log))
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

// Handler returns the routed API wrapped in OpenTelemetry HTTP instrumentation.
func (r *Router) Handler(serviceName string) http.Handler {
	router := r.Setup()
	router.Use(routeSpanName)
	return otelhttp.NewHandler(router, serviceName)
}

// routeSpanName renames the server span after the matched route template.
func routeSpanName(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if route := mux.CurrentRoute(req); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				trace.SpanFromContext(req.Context()).SetName(req.Method + " " + tmpl)
			}
		}
		next.ServeHTTP(w, req)
	})
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	if r.db != nil {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := r.db.PingContext(ctx); err != nil {
			r.log.Warnf("Health check failed: %+v", err)
			response.ServiceUnavailable(w, "database unavailable")
			return
		}
	}
	response.Success(w, http.StatusOK, "ok", map[string]string{"status": "ok"})
}
