package middleware

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired accepts only verified access tokens. It runs after
// jwtauth.Verifier.
func AuthRequired(next http.Handler) http.Handler {
	hfn := func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if errors.Is(err, jwtauth.ErrExpired) {
			response.HandleError(w, auth.ErrTokenExpired)
			return
		}
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		if token == nil {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		tokenType, ok := claims["type"].(string)
		if tokenType != jwt.TypeAccess || !ok {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(hfn)
}

// RequireWarehouse rejects tokens that are not bound to a warehouse.
func RequireWarehouse(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := jwt.IdentityFromContext(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}

		if id.WarehouseID == "" {
			response.HandleError(w, auth.ErrWarehouseRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
