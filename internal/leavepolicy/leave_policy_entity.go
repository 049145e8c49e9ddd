package leavepolicy

import (
	"time"

	"github.com/google/uuid"
)

type LeaveType string

const (
	LeaveTypeVacation LeaveType = "VACATION"
	LeaveTypeSick     LeaveType = "SICK"
	LeaveTypePersonal LeaveType = "PERSONAL"
	LeaveTypeUnpaid   LeaveType = "UNPAID"
)

var AllLeaveTypes = []LeaveType{
	LeaveTypeVacation,
	LeaveTypeSick,
	LeaveTypePersonal,
	LeaveTypeUnpaid,
}

func (t LeaveType) Valid() bool {
	for _, v := range AllLeaveTypes {
		if t == v {
			return true
		}
	}
	return false
}

// LeavePolicy is an eligibility and allocation rule. A nil criterion matches
// any employee. Seniority bounds and carry-over settings are stored for
// administrators but not evaluated by the resolver.
type LeavePolicy struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name          string    `gorm:"type:varchar(120);not null;uniqueIndex:uq_leave_policy_name"`
	LeaveType     LeaveType `gorm:"type:varchar(30);not null;index:idx_leave_policies_type"`
	DaysAllocated int       `gorm:"not null;default:0;check:days_allocated >= 0"`

	ContractType *string `gorm:"type:varchar(30)"`
	Role         *string `gorm:"type:varchar(50)"`
	Department   *string `gorm:"type:varchar(100)"`
	Site         *string `gorm:"type:varchar(100)"`
	MinSeniority *int
	MaxSeniority *int

	CarryOverEnabled bool `gorm:"not null;default:false"`
	MaxCarryOverDays *int

	CreatedAt time.Time
	UpdatedAt time.Time
}
