package warehouse

import "context"

// ScopeLocator resolves which warehouse a call operates on.
type ScopeLocator interface {
	// FromContext reads the warehouse from the caller's token claims.
	FromContext(ctx context.Context) (Scope, error)

	// ForWarehouse builds a scope without a caller, for background jobs.
	ForWarehouse(ctx context.Context, warehouseID string) (Scope, error)
}
