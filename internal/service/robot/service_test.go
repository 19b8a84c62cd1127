package robot

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/robot"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/shift"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/service/servicetest"
	warehouseService "github.com/cmlabs-hris/robot-fleet-backend-go/internal/service/warehouse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	kubotID   = "5d4c3b2a-1f0e-4d9c-8b7a-6f5e4d3c2b1a"
	retiredID = "6e4c3b2a-1f0e-4d9c-8b7a-6f5e4d3c2b1a"
)

func newService(t *testing.T) (robot.RobotService, *servicetest.Robots, *servicetest.Events) {
	t.Helper()
	resolver := shift.DefaultResolver()
	robots := servicetest.NewRobots(
		robot.Robot{ID: kubotID, WarehouseID: servicetest.WarehouseID, SerialNumber: "KB-001", Type: robot.TypeKubot, Status: robot.StatusOperational},
		robot.Robot{ID: retiredID, WarehouseID: servicetest.WarehouseID, SerialNumber: "KB-002", Type: robot.TypeKubotMini, Status: robot.StatusRetired},
		robot.Robot{ID: "other", WarehouseID: "other-warehouse", SerialNumber: "KB-003", Type: robot.TypeKubotE2, Status: robot.StatusOperational},
	)
	events := &servicetest.Events{}
	locator := warehouseService.NewScopeLocator(servicetest.NewWarehouses("Europe/Warsaw"), resolver, "UTC")
	// 2024-06-10 07:30 in Warsaw.
	clk := clock.Fixed{At: time.Date(2024, 6, 10, 5, 30, 0, 0, time.UTC)}
	return NewRobotService(robots, &servicetest.Tx{}, locator, resolver, clk, events), robots, events
}

func TestChangeStatus(t *testing.T) {
	svc, robots, events := newService(t)

	resp, err := svc.ChangeStatus(servicetest.Context(), robot.ChangeStatusRequest{RobotID: kubotID, Status: "Malfunction"})
	require.NoError(t, err)

	assert.Equal(t, robot.StatusOperational, resp.FromStatus)
	assert.Equal(t, robot.StatusMalfunction, resp.ToStatus)
	assert.Equal(t, "2024-06-10 day", resp.Shift)
	assert.Equal(t, "2024-06-10T05:30:00Z", resp.ChangedAt)
	assert.Equal(t, robot.StatusMalfunction, robots.Items[kubotID].Status)
	require.Len(t, robots.Changes, 1)
	assert.Equal(t, []string{sse.EventRobotStatus}, events.Names())
}

func TestChangeStatus_Errors(t *testing.T) {
	svc, robots, _ := newService(t)
	ctx := servicetest.Context()

	_, err := svc.ChangeStatus(ctx, robot.ChangeStatusRequest{RobotID: kubotID, Status: "operational"})
	assert.ErrorIs(t, err, robot.ErrStatusUnchanged)

	_, err = svc.ChangeStatus(ctx, robot.ChangeStatusRequest{RobotID: retiredID, Status: "operational"})
	assert.ErrorIs(t, err, robot.ErrRobotRetired)

	_, err = svc.ChangeStatus(ctx, robot.ChangeStatusRequest{RobotID: "7f4c3b2a-1f0e-4d9c-8b7a-6f5e4d3c2b1a", Status: "operational"})
	assert.ErrorIs(t, err, robot.ErrRobotNotFound)

	_, err = svc.ChangeStatus(ctx, robot.ChangeStatusRequest{RobotID: kubotID, Status: "flying"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "status")

	assert.Empty(t, robots.Changes)
}

func TestList(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := servicetest.Context()

	all, err := svc.List(ctx, robot.ListRobotsFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "KB-001", all[0].SerialNumber)

	status := "retired"
	retired, err := svc.List(ctx, robot.ListRobotsFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, retired, 1)
	assert.Equal(t, robot.TypeKubotMini, retired[0].Type)

	bad := "RT_DRONE"
	_, err = svc.List(ctx, robot.ListRobotsFilter{Type: &bad})
	assert.Error(t, err)
}
