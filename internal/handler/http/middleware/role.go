package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/jwt"
)

// RequireSupervisor requires supervisor or admin role
func RequireSupervisor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := jwt.IdentityFromContext(r.Context())
		if err != nil {
			response.HandleError(w, auth.ErrSupervisorRequired)
			return
		}

		if !id.IsSupervisor() {
			response.HandleError(w, auth.ErrSupervisorRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
