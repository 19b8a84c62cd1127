package warehouse

import "errors"

var (
	ErrWarehouseNotFound = errors.New("warehouse not found")
	ErrWarehouseInactive = errors.New("warehouse is not active")
)
