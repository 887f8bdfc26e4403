package middleware

import (
	"context"
	"net/http"
	"strings"

	"clinic-scheduling-api/internal/domain/entity"
	"clinic-scheduling-api/pkg/jwt"
	"clinic-scheduling-api/pkg/response"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type contextKey string

const CallerKey contextKey = "caller"

type AuthMiddleware struct {
	jwtService     *jwt.JWTService
	redisClient    *redis.Client
	requireSession bool
	log            *logrus.Logger
}

// NewAuthMiddleware verifies identity tokens. When requireSession is set and
// a Redis client is given, the token must also have a live session key.
func NewAuthMiddleware(jwtService *jwt.JWTService, redisClient *redis.Client, requireSession bool, log *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:     jwtService,
		redisClient:    redisClient,
		requireSession: requireSession && redisClient != nil,
		log:            log,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// The scheme is case-insensitive.
		scheme, token, found := strings.Cut(strings.TrimSpace(authHeader), " ")
		token = strings.TrimSpace(token)
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.jwtService.ValidateToken(token)
		if err != nil {
			m.log.WithField("request_id", GetRequestIDFromContext(r.Context())).Debugf("Rejected token: %v", err)
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		if claims.TokenType != jwt.AccessToken {
			response.Unauthorized(w, "Invalid token type")
			return
		}

		role, ok := entity.CallerRoleFromID(claims.RoleID)
		if !ok {
			response.Forbidden(w, "Unknown role")
			return
		}

		if m.requireSession {
			exists, err := m.redisClient.Exists(r.Context(), jwt.SessionKey(claims.UserID, claims.TokenID)).Result()
			if err != nil {
				m.log.Warnf("Failed to check session for user %s: %+v", claims.UserID, err)
				response.InternalServerError(w, "Failed to validate token")
				return
			}
			if exists == 0 {
				response.Unauthorized(w, "Token has been revoked")
				return
			}
		}

		ctx := context.WithValue(r.Context(), CallerKey, entity.Caller{ID: claims.UserID, Role: role})

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional authenticates requests that carry an Authorization header and
// passes anonymous ones through untouched.
func (m *AuthMiddleware) Optional(next http.Handler) http.Handler {
	authenticated := m.Authenticate(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}
		authenticated.ServeHTTP(w, r)
	})
}

// GetCallerFromContext returns the authenticated caller set by Authenticate.
func GetCallerFromContext(ctx context.Context) (entity.Caller, bool) {
	caller, ok := ctx.Value(CallerKey).(entity.Caller)
	return caller, ok
}
