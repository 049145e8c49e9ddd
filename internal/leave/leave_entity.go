package leave

import (
	"time"

	"go-leave/internal/leavepolicy"

	"github.com/google/uuid"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// LeaveRequest rows are never deleted; a decision only moves Status out of
// PENDING once.
type LeaveRequest struct {
	ID         uuid.UUID             `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID             `gorm:"type:uuid;not null;index:idx_leave_requests_employee,priority:1"`
	LeaveType  leavepolicy.LeaveType `gorm:"type:varchar(30);not null"`

	StartDate     time.Time `gorm:"type:date;not null;index:idx_leave_requests_employee,priority:2"`
	EndDate       time.Time `gorm:"type:date;not null"`
	DaysRequested int       `gorm:"not null"`
	Reason        string    `gorm:"type:text"`

	Status string `gorm:"type:varchar(20);not null;index:idx_leave_requests_status"`
	// ManagerID is the employee's manager at submission. ReviewedBy is whoever
	// actioned the request, which may differ after a reassignment.
	ManagerID    *uuid.UUID `gorm:"type:uuid"`
	ReviewedBy   *uuid.UUID `gorm:"type:uuid"`
	ReviewReason *string    `gorm:"type:text"`
	ReviewedAt   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
