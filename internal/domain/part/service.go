package part

import "context"

type PartService interface {
	// Swap installs or removes parts on a robot, moves stock and scores the
	// employee, all in one transaction.
	Swap(ctx context.Context, req SwapRequest) (SwapResponse, error)

	Restock(ctx context.Context, req RestockRequest) (PartResponse, error)
	List(ctx context.Context) ([]PartResponse, error)
}
