package leave

type CreateLeaveRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	LeaveType  string `json:"leave_type" binding:"required,oneof=VACATION SICK PERSONAL UNPAID"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
	Reason     string `json:"reason" binding:"max=1000"`
}

// ActionLeaveRequest is a manager decision. Decision is checked by the
// service so unknown values map to a domain error.
type ActionLeaveRequest struct {
	ManagerID string  `json:"manager_id" binding:"required,uuid"`
	Decision  string  `json:"decision" binding:"required"`
	Reason    *string `json:"reason" binding:"omitempty,max=1000"`
}

type LeaveResponse struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	LeaveType     string  `json:"leave_type"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	DaysRequested int     `json:"days_requested"`
	Reason        string  `json:"reason"`
	Status        string  `json:"status"`
	ManagerID     *string `json:"manager_id,omitempty"`
	ReviewedBy    *string `json:"reviewed_by,omitempty"`
	ReviewReason  *string `json:"review_reason,omitempty"`
	ReviewedAt    *string `json:"reviewed_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}
