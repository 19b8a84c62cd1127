package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/auth"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var technician = auth.Identity{
	UserID:      "6f1c2b8e-9f5e-4a36-9b5e-1e2a3b4c5d6e",
	EmployeeID:  "0c8a7e1d-2b3c-4d5e-8f90-a1b2c3d4e5f6",
	WarehouseID: "b7e6d5c4-b3a2-4190-8f7e-6d5c4b3a2910",
	Role:        auth.RoleTechnician,
}

func TestGenerateAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, expiresAt, err := svc.GenerateAccessToken(technician)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Greater(t, expiresAt, time.Now().Unix())

	decoded, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)

	assert.Equal(t, TypeAccess, claims["type"])
	assert.Equal(t, technician.WarehouseID, claims["warehouse_id"])

	id, err := identityFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, technician, id)
}

func TestSSEToken(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, expiresIn, err := svc.GenerateSSEToken(technician)
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	id, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, technician.WarehouseID, id.WarehouseID)

	access, _, err := svc.GenerateAccessToken(technician)
	require.NoError(t, err)
	_, err = svc.ValidateSSEToken(access)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = svc.ValidateSSEToken("not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestSSETokenExpired(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := svc.GenerateSSEToken(technician)
	require.NoError(t, err)

	_, err = svc.ValidateSSEToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestIdentityFromContext(t *testing.T) {
	_, err := IdentityFromContext(context.Background())
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	ctx, err := ContextWithIdentity(context.Background(), technician)
	require.NoError(t, err)

	id, err := IdentityFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, technician, id)
}

func TestIdentityWithoutEmployee(t *testing.T) {
	admin := auth.Identity{UserID: "u-1", Role: auth.RoleAdmin}
	ctx, err := ContextWithIdentity(context.Background(), admin)
	require.NoError(t, err)

	id, err := IdentityFromContext(ctx)
	require.NoError(t, err)
	assert.Empty(t, id.EmployeeID)
	assert.Empty(t, id.WarehouseID)
	assert.True(t, id.IsSupervisor())
}
