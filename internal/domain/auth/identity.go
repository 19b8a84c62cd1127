package auth

type Role string

const (
	RoleTechnician Role = "technician"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

// Identity is the caller as carried by the access token claims.
type Identity struct {
	UserID      string
	EmployeeID  string
	WarehouseID string
	Role        Role
}

func (i Identity) IsSupervisor() bool {
	return i.Role == RoleSupervisor || i.Role == RoleAdmin
}
