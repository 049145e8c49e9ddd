package leavebalance

type LeaveBalanceResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	LeaveType       string  `json:"leave_type"`
	Year            int     `json:"year"`
	TotalAllocated  int     `json:"total_allocated"`
	DaysUsed        int     `json:"days_used"`
	DaysCarriedOver int     `json:"days_carried_over"`
	AvailableDays   int     `json:"available_days"`
	PolicyID        *string `json:"policy_id"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}
