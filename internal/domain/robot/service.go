package robot

import "context"

type RobotService interface {
	// ChangeStatus records a status transition and publishes it live.
	ChangeStatus(ctx context.Context, req ChangeStatusRequest) (StatusChangeResponse, error)

	List(ctx context.Context, filter ListRobotsFilter) ([]RobotResponse, error)
}
