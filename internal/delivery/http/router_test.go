package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clinic-scheduling-api/config"
	"clinic-scheduling-api/internal/delivery/http/handler"
	"clinic-scheduling-api/internal/delivery/http/middleware"
	"clinic-scheduling-api/pkg/jwt"
	"clinic-scheduling-api/pkg/validator"

	"github.com/sirupsen/logrus"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func newTestRouter(db Pinger) http.Handler {
	log := logrus.New()
	log.SetOutput(io.Discard)
	v := validator.NewValidator()

	r := NewRouter(
		log,
		handler.NewSlotHandler(nil, v),
		handler.NewAppointmentHandler(nil, v),
		handler.NewProviderHandler(nil, nil, v),
		handler.NewAuditLogHandler(nil, v),
		middleware.NewAuthMiddleware(jwt.NewJWTService(config.JWTConfig{Secret: "test-secret"}), nil, false, log),
		middleware.NewCORSMiddleware([]string{"*"}),
		nil,
		db,
	)
	return r.Setup()
}

func TestHealthCheck(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(pingFunc(func(context.Context) error { return nil })).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthy: status = %d", rec.Code)
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("request id header missing")
	}

	rec = httptest.NewRecorder()
	newTestRouter(pingFunc(func(context.Context) error { return errors.New("down") })).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy: status = %d", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(nil)

	for _, tt := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/bookings"},
		{http.MethodGet, "/api/v1/bookings"},
		{http.MethodPatch, "/api/v1/bookings/7b0e4c3a-6a56-4b8e-9f0c-2f9d7d8c1a11"},
		{http.MethodPut, "/api/v1/providers/me/availability/monday"},
		{http.MethodGet, "/api/v1/providers/me/schedule"},
		{http.MethodGet, "/api/v1/providers/me/availability"},
		{http.MethodGet, "/api/v1/admin/audit-logs"},
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader("{}")))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", tt.method, tt.path, rec.Code)
		}
	}
}

func TestPreflight(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/bookings", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS headers missing")
	}
}
