package warehouse

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/warehouse"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/shift"
)

type ScopeLocatorImpl struct {
	warehouse.WarehouseRepository
	resolver   *shift.Resolver
	fallbackTZ string
}

// NewScopeLocator resolves warehouses through repo. Warehouses without a
// usable timezone fall back to fallbackTZ.
func NewScopeLocator(repo warehouse.WarehouseRepository, resolver *shift.Resolver, fallbackTZ string) warehouse.ScopeLocator {
	return &ScopeLocatorImpl{
		WarehouseRepository: repo,
		resolver:            resolver,
		fallbackTZ:          fallbackTZ,
	}
}

func (s *ScopeLocatorImpl) FromContext(ctx context.Context) (warehouse.Scope, error) {
	id, err := jwt.IdentityFromContext(ctx)
	if err != nil {
		return warehouse.Scope{}, err
	}
	if id.WarehouseID == "" {
		return warehouse.Scope{}, auth.ErrWarehouseRequired
	}

	scope, err := s.ForWarehouse(ctx, id.WarehouseID)
	if err != nil {
		return warehouse.Scope{}, err
	}
	scope.EmployeeID = id.EmployeeID
	return scope, nil
}

func (s *ScopeLocatorImpl) ForWarehouse(ctx context.Context, warehouseID string) (warehouse.Scope, error) {
	wh, err := s.GetByID(ctx, warehouseID)
	if err != nil {
		return warehouse.Scope{}, fmt.Errorf("failed to get warehouse: %w", err)
	}
	if !wh.IsActive {
		return warehouse.Scope{}, warehouse.ErrWarehouseInactive
	}

	loc, err := s.resolver.Location(wh.Timezone)
	if err != nil {
		slog.Warn("warehouse timezone unusable, using fallback",
			"warehouse_id", wh.ID, "timezone", wh.Timezone, "fallback", s.fallbackTZ, "error", err)
		if loc, err = s.resolver.Location(s.fallbackTZ); err != nil {
			return warehouse.Scope{}, err
		}
	}

	return warehouse.Scope{Warehouse: wh, Location: loc}, nil
}
