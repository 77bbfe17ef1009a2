package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/face-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/face-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// RequireRole allows the request through when the token carries one of roles.
func RequireRole(denied error, roles ...jwt.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.HandleError(w, denied)
				return
			}

			roleStr, ok := claims["role"].(string)
			if !ok {
				response.HandleError(w, denied)
				return
			}

			for _, role := range roles {
				if jwt.Role(roleStr) == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.HandleError(w, denied)
		})
	}
}

// RequireAdmin requires admin role
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(auth.ErrAdminRequired, jwt.RoleAdmin)(next)
}

// RequireKiosk admits attendance terminals and admins
func RequireKiosk(next http.Handler) http.Handler {
	return RequireRole(auth.ErrKioskRequired, jwt.RoleKiosk, jwt.RoleAdmin)(next)
}
