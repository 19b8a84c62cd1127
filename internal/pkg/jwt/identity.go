package jwt

import (
	"context"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/auth"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// IdentityFromContext reads the caller from claims placed by jwtauth.Verifier.
func IdentityFromContext(ctx context.Context) (auth.Identity, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	return identityFromClaims(claims)
}

// ContextWithIdentity stores id the way jwtauth.Verifier would. Used by
// the SSE endpoint after query-token validation and by tests.
func ContextWithIdentity(ctx context.Context, id auth.Identity) (context.Context, error) {
	token := jwt.New()
	for k, v := range identityClaims(id, TypeAccess) {
		if v == nil {
			continue
		}
		if err := token.Set(k, v); err != nil {
			return nil, err
		}
	}
	return jwtauth.NewContext(ctx, token, nil), nil
}

func identityFromClaims(claims map[string]interface{}) (auth.Identity, error) {
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return auth.Identity{}, auth.ErrInvalidToken
	}

	id := auth.Identity{UserID: userID}
	id.EmployeeID, _ = claims["employee_id"].(string)
	id.WarehouseID, _ = claims["warehouse_id"].(string)
	role, _ := claims["role"].(string)
	id.Role = auth.Role(role)

	return id, nil
}
