package report

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/malfunction"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/robot"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/score"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/shift"
	"golang.org/x/sync/errgroup"
)

// lookup holds the robot and employee metadata report rows are enriched with.
type lookup struct {
	robots    map[string]robot.Robot
	employees map[string]employee.DisplayInfo
}

func (s *ReportServiceImpl) loadLookup(ctx context.Context, warehouseID string, records []malfunction.Exception) (lookup, error) {
	robotIDs := distinct(records, func(e malfunction.Exception) string { return e.RobotID })
	employeeIDs := distinct(records, func(e malfunction.Exception) string { return e.EmployeeID })

	var lk lookup
	if len(records) == 0 {
		return lk, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		robots, err := s.robotRepo.GetByIDs(gctx, warehouseID, robotIDs)
		if err != nil {
			return fmt.Errorf("failed to load robots: %w", err)
		}
		lk.robots = robots
		return nil
	})
	g.Go(func() error {
		employees, err := s.employeeRepo.GetDisplayInfo(gctx, warehouseID, employeeIDs)
		if err != nil {
			return fmt.Errorf("failed to load employees: %w", err)
		}
		lk.employees = employees
		return nil
	})
	if err := g.Wait(); err != nil {
		return lookup{}, err
	}
	return lk, nil
}

func distinct(records []malfunction.Exception, key func(malfunction.Exception) string) []string {
	seen := make(map[string]struct{}, len(records))
	var out []string
	for _, e := range records {
		k := key(e)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func (lk lookup) robotType(robotID string) string {
	if r, ok := lk.robots[robotID]; ok {
		return string(r.Type)
	}
	return robot.TypeUnknown
}

// totals counts records per robot type. Every known type is listed.
func (lk lookup) totals(records []malfunction.Exception) map[string]float64 {
	var t score.Tally
	for _, rt := range robot.Types {
		t.Seed(string(rt))
	}
	for _, e := range records {
		t.Count(lk.robotType(e.RobotID))
	}
	return t.Totals()
}

func (lk lookup) row(w shift.Window, e malfunction.Exception) report.Row {
	row := report.Row{
		ExceptionID:  e.ID,
		Shift:        w.Label(),
		ShiftKind:    string(w.Kind),
		ShiftDate:    w.LocalDate.String(),
		RobotID:      e.RobotID,
		RobotType:    lk.robotType(e.RobotID),
		ErrorCode:    e.ErrorCode,
		Description:  e.Description,
		RepairStatus: string(e.RepairStatus),
		EmployeeID:   e.EmployeeID,
	}

	if r, ok := lk.robots[e.RobotID]; ok {
		row.RobotSerial = r.SerialNumber
	}
	if info, ok := lk.employees[e.EmployeeID]; ok {
		row.EmployeeCode = info.EmployeeCode
		row.EmployeeName = info.FullName
	}

	if e.ErrorStartAt != nil {
		row.ErrorStartTime = e.ErrorStartAt.UTC().Format(time.RFC3339)
	} else {
		row.ErrorStartTime = e.ErrorStartTime
	}
	if e.ErrorEndAt != nil {
		end := e.ErrorEndAt.UTC().Format(time.RFC3339)
		row.ErrorEndTime = &end
	}
	return row
}
