package auth

import "errors"

var (
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrWarehouseRequired  = errors.New("token is not bound to a warehouse")
	ErrSupervisorRequired = errors.New("supervisor or admin role required")
)

var ErrEmployeeRequired = errors.New("token is not bound to an employee")
