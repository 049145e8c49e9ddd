package leavebalance

import (
	"time"

	"go-leave/internal/leavepolicy"

	"github.com/google/uuid"
)

// LeaveBalance is the quota of one employee for one leave type and year.
// (employee_id, leave_type, year) is unique, so at most one row ever exists
// per key no matter how many requests race to provision it.
type LeaveBalance struct {
	ID              uuid.UUID             `gorm:"type:uuid;primaryKey"`
	EmployeeID      uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:uq_leave_balance_key,priority:1"`
	LeaveType       leavepolicy.LeaveType `gorm:"type:varchar(30);not null;uniqueIndex:uq_leave_balance_key,priority:2"`
	Year            int                   `gorm:"not null;uniqueIndex:uq_leave_balance_key,priority:3"`
	TotalAllocated  int                   `gorm:"not null"`
	DaysUsed        int                   `gorm:"not null;check:chk_leave_balance_usage,days_used <= total_allocated"`
	DaysCarriedOver int                   `gorm:"not null"`
	PolicyID        *uuid.UUID            `gorm:"type:uuid"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (b LeaveBalance) Available() int {
	return b.TotalAllocated - b.DaysUsed
}
