package employee

import "time"

type Employee struct {
	ID           string
	WarehouseID  string
	UserID       *string
	EmployeeCode string
	FullName     string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayInfo is the subset of an employee a report row shows.
type DisplayInfo struct {
	ID           string `json:"id"`
	EmployeeCode string `json:"employee_code"`
	FullName     string `json:"full_name"`
}
