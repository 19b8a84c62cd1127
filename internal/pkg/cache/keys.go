package cache

import (
	"fmt"
	"time"
)

func MonthlyReportKey(warehouseID string, month string) string {
	return fmt.Sprintf("report:monthly:%s:%s", warehouseID, month)
}

// ShiftReportKey identifies a shift by its start instant, which is unique
// per warehouse.
func ShiftReportKey(warehouseID string, start time.Time) string {
	return fmt.Sprintf("report:shift:%s:%d", warehouseID, start.Unix())
}

// ReportKeys lists the cached reports that contain a record: its shift and
// its local month.
func ReportKeys(warehouseID string, shiftStart time.Time, month string) []string {
	return []string{
		ShiftReportKey(warehouseID, shiftStart),
		MonthlyReportKey(warehouseID, month),
	}
}
