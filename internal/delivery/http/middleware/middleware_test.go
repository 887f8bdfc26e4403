package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinic-scheduling-api/config"
	"clinic-scheduling-api/internal/domain/entity"
	"clinic-scheduling-api/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate(t *testing.T) {
	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "test-secret"})
	auth := NewAuthMiddleware(jwtService, nil, true, newTestLogger())

	userID := uuid.New()
	patientToken, _, _ := jwtService.GenerateAccessToken(userID, entity.RoleIDPatient, time.Minute)
	unknownRoleToken, _, _ := jwtService.GenerateAccessToken(userID, 99, time.Minute)

	var seen entity.Caller
	handler := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetCallerFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
		{"unknown role", "Bearer " + unknownRoleToken, http.StatusForbidden},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"valid", "Bearer " + patientToken, http.StatusNoContent},
		{"lowercase scheme", "bearer " + patientToken, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	if seen.ID != userID || seen.Role != entity.CallerRolePatient {
		t.Errorf("caller = %+v", seen)
	}
}

func TestOptionalAuthentication(t *testing.T) {
	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "test-secret"})
	auth := NewAuthMiddleware(jwtService, nil, false, newTestLogger())

	providerID := uuid.New()
	providerToken, _, _ := jwtService.GenerateAccessToken(providerID, entity.RoleIDDoctor, time.Minute)

	var seen *entity.Caller
	handler := auth.Optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = nil
		if caller, ok := GetCallerFromContext(r.Context()); ok {
			seen = &caller
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(header string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := serve(""); code != http.StatusNoContent || seen != nil {
		t.Errorf("anonymous: status %d, caller %+v", code, seen)
	}
	if code := serve("Bearer " + providerToken); code != http.StatusNoContent || seen == nil || seen.ID != providerID || seen.Role != entity.CallerRoleProvider {
		t.Errorf("provider token: status %d, caller %+v", code, seen)
	}
	if code := serve("Bearer nope"); code != http.StatusUnauthorized {
		t.Errorf("bad token: status %d", code)
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireProviderOrAdmin(okHandler())

	tests := []struct {
		name   string
		caller *entity.Caller
		want   int
	}{
		{"no caller", nil, http.StatusUnauthorized},
		{"patient", &entity.Caller{ID: uuid.New(), Role: entity.CallerRolePatient}, http.StatusForbidden},
		{"provider", &entity.Caller{ID: uuid.New(), Role: entity.CallerRoleProvider}, http.StatusNoContent},
		{"admin", &entity.Caller{ID: uuid.New(), Role: entity.CallerRoleAdmin}, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/", nil)
			if tt.caller != nil {
				req = req.WithContext(context.WithValue(req.Context(), CallerKey, *tt.caller))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestWithRequestID(t *testing.T) {
	var seen string
	handler := WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if seen != "abc-123" || rec.Header().Get(RequestIDHeader) != "abc-123" {
		t.Errorf("incoming id not propagated: ctx=%q header=%q", seen, rec.Header().Get(RequestIDHeader))
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if _, err := uuid.Parse(rec.Header().Get(RequestIDHeader)); err != nil {
		t.Errorf("generated id is not a uuid: %q", rec.Header().Get(RequestIDHeader))
	}
}

func TestAccessLogRecordsStatus(t *testing.T) {
	log := newTestLogger()
	handler := AccessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestMemoryLimiter(t *testing.T) {
	limiter := NewMemoryLimiter(0.001, 2)
	defer limiter.Stop()
	handler := RateLimit(limiter, newTestLogger())(okHandler())

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := send("10.0.0.1:1234"); code != http.StatusNoContent {
			t.Fatalf("request %d: status %d", i, code)
		}
	}
	if code := send("10.0.0.1:5678"); code != http.StatusTooManyRequests {
		t.Errorf("third request: status %d, want 429", code)
	}
	if code := send("10.0.0.2:1234"); code != http.StatusNoContent {
		t.Errorf("other client throttled: %d", code)
	}

	if removed := limiter.evictIdle(time.Now().Add(time.Hour)); removed != 2 {
		t.Errorf("evicted %d, want 2", removed)
	}
	limiter.Stop()
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestRateLimitFailsOpen(t *testing.T) {
	handler := RateLimit(failingLimiter{}, newTestLogger())(okHandler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want pass-through", rec.Code)
	}
}

func TestRedisLimiterWindow(t *testing.T) {
	l := NewRedisLimiter(nil, 2, 10)
	if l.window != 5*time.Second || l.limit != 10 {
		t.Errorf("window = %s, limit = %d", l.window, l.limit)
	}
}

func TestCORS(t *testing.T) {
	cors := NewCORSMiddleware([]string{"https://clinic.example.com/", " https://admin.example.com"})

	tests := []struct {
		origin string
		want   string
	}{
		{"https://clinic.example.com", "https://clinic.example.com"},
		{"https://admin.example.com", "https://admin.example.com"},
		{"https://evil.example.com", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", tt.origin)
		rec := httptest.NewRecorder()
		cors.Handle(okHandler()).ServeHTTP(rec, req)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
			t.Errorf("%s: allow origin = %q, want %q", tt.origin, got, tt.want)
		}
		if rec.Header().Get("Vary") != "Origin" {
			t.Errorf("%s: Vary header missing", tt.origin)
		}
	}

	rec := httptest.NewRecorder()
	NewCORSMiddleware(nil).Handle(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("preflight: status = %d, origin = %q", rec.Code, rec.Header().Get("Access-Control-Allow-Origin"))
	}
	if rec.Header().Get("Access-Control-Max-Age") == "" {
		t.Error("preflight: max age missing")
	}
}
