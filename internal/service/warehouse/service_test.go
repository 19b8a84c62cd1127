package warehouse

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/warehouse"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/shift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWarehouseRepo struct {
	warehouses map[string]warehouse.Warehouse
}

func (f *fakeWarehouseRepo) GetByID(_ context.Context, id string) (warehouse.Warehouse, error) {
	wh, ok := f.warehouses[id]
	if !ok {
		return warehouse.Warehouse{}, warehouse.ErrWarehouseNotFound
	}
	return wh, nil
}

func (f *fakeWarehouseRepo) ListActive(context.Context) ([]warehouse.Warehouse, error) {
	var out []warehouse.Warehouse
	for _, wh := range f.warehouses {
		if wh.IsActive {
			out = append(out, wh)
		}
	}
	return out, nil
}

func newLocator() warehouse.ScopeLocator {
	repo := &fakeWarehouseRepo{warehouses: map[string]warehouse.Warehouse{
		"wh-waw":    {ID: "wh-waw", Timezone: "Europe/Warsaw", IsActive: true},
		"wh-broken": {ID: "wh-broken", Timezone: "Mars/Olympus", IsActive: true},
		"wh-closed": {ID: "wh-closed", Timezone: "UTC", IsActive: false},
	}}
	return NewScopeLocator(repo, shift.DefaultResolver(), "UTC")
}

func TestFromContext(t *testing.T) {
	locator := newLocator()

	ctx, err := jwt.ContextWithIdentity(context.Background(), auth.Identity{
		UserID: "u-1", EmployeeID: "e-1", WarehouseID: "wh-waw", Role: auth.RoleTechnician,
	})
	require.NoError(t, err)

	scope, err := locator.FromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "wh-waw", scope.ID())
	assert.Equal(t, "e-1", scope.EmployeeID)
	assert.Equal(t, "Europe/Warsaw", scope.Timezone())
}

func TestFromContextErrors(t *testing.T) {
	locator := newLocator()

	_, err := locator.FromContext(context.Background())
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	ctx, err := jwt.ContextWithIdentity(context.Background(), auth.Identity{UserID: "u-1", Role: auth.RoleAdmin})
	require.NoError(t, err)
	_, err = locator.FromContext(ctx)
	assert.ErrorIs(t, err, auth.ErrWarehouseRequired)

	ctx, err = jwt.ContextWithIdentity(context.Background(), auth.Identity{UserID: "u-1", WarehouseID: "wh-none"})
	require.NoError(t, err)
	_, err = locator.FromContext(ctx)
	assert.ErrorIs(t, err, warehouse.ErrWarehouseNotFound)
}

func TestForWarehouse(t *testing.T) {
	locator := newLocator()

	scope, err := locator.ForWarehouse(context.Background(), "wh-broken")
	require.NoError(t, err)
	assert.Equal(t, "UTC", scope.Timezone())

	_, err = locator.ForWarehouse(context.Background(), "wh-closed")
	assert.ErrorIs(t, err, warehouse.ErrWarehouseInactive)
}
