package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/profile"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/jwt"
)

// AdminOnly turns non-admins away at the router. The token's role claim is
// ignored; the profile table decides. Admin services check again themselves.
func AdminOnly(profileRepo profile.ProfileRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := jwt.UserIDFromContext(r.Context())
			if err != nil {
				response.HandleError(w, err)
				return
			}

			if _, err := profile.RequireRole(r.Context(), profileRepo, userID, profile.RoleAdmin); err != nil {
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
