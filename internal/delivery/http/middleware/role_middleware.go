package middleware

import (
	"net/http"

	"clinic-scheduling-api/internal/domain/entity"
	"clinic-scheduling-api/pkg/response"
)

// RequireRole creates a middleware that checks if the caller has any of the required roles.
// The caller is read from context (set by AuthMiddleware from JWT claims).
func RequireRole(allowed ...entity.CallerRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := GetCallerFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			for _, role := range allowed {
				if caller.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, "You don't have permission to access this resource")
		})
	}
}

// RequireAdmin is a convenience middleware for admin-only endpoints
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.CallerRoleAdmin)(next)
}

// RequirePatient is a convenience middleware for patient-only endpoints
func RequirePatient(next http.Handler) http.Handler {
	return RequireRole(entity.CallerRolePatient)(next)
}

// RequireProviderOrAdmin guards availability edits; ownership is checked in the usecase.
func RequireProviderOrAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.CallerRoleProvider, entity.CallerRoleAdmin)(next)
}
