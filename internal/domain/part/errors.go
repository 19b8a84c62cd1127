package part

import "errors"

var (
	ErrPartNotFound      = errors.New("part not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)
