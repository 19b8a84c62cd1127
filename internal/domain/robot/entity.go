package robot

import (
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/bucket"
)

type RobotType string

const (
	TypeKubot     RobotType = "RT_KUBOT"
	TypeKubotMini RobotType = "RT_KUBOT_MINI"
	TypeKubotE2   RobotType = "RT_KUBOT_E2"
)

// TypeUnknown labels records whose robot row is missing.
const TypeUnknown = "UNKNOWN"

// Types lists every robot type in report column order.
var Types = []RobotType{TypeKubot, TypeKubotMini, TypeKubotE2}

func (t RobotType) Valid() bool {
	for _, v := range Types {
		if t == v {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusOperational Status = "operational"
	StatusMalfunction Status = "malfunction"
	StatusInRepair    Status = "in_repair"
	StatusRetired     Status = "retired"
)

var Statuses = []Status{StatusOperational, StatusMalfunction, StatusInRepair, StatusRetired}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

type Robot struct {
	ID           string
	WarehouseID  string
	SerialNumber string
	Type         RobotType
	Status       Status
	Zone         *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type StatusChange struct {
	ID          string
	RobotID     string
	WarehouseID string
	EmployeeID  string
	FromStatus  Status
	ToStatus    Status
	Note        *string
	ChangedAt   time.Time
}

func (c StatusChange) Stamp() bucket.Stamp {
	return bucket.At(c.ChangedAt)
}
