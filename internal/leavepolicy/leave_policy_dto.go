package leavepolicy

type CreateLeavePolicyRequest struct {
	Name             string  `json:"name" binding:"required,max=120"`
	LeaveType        string  `json:"leave_type" binding:"required,oneof=VACATION SICK PERSONAL UNPAID"`
	DaysAllocated    *int    `json:"days_allocated" binding:"required,min=0"`
	ContractType     *string `json:"contract_type" binding:"omitempty,oneof=FULL_TIME PART_TIME INTERN CONTRACTOR"`
	Role             *string `json:"role" binding:"omitempty,max=50"`
	Department       *string `json:"department" binding:"omitempty,max=100"`
	Site             *string `json:"site" binding:"omitempty,max=100"`
	MinSeniority     *int    `json:"min_seniority" binding:"omitempty,min=0"`
	MaxSeniority     *int    `json:"max_seniority" binding:"omitempty,min=0"`
	CarryOverEnabled bool    `json:"carry_over_enabled"`
	MaxCarryOverDays *int    `json:"max_carry_over_days" binding:"omitempty,min=0"`
}

// UpdateLeavePolicyRequest replaces every field of a policy.
type UpdateLeavePolicyRequest CreateLeavePolicyRequest

type LeavePolicyResponse struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	LeaveType        string  `json:"leave_type"`
	DaysAllocated    int     `json:"days_allocated"`
	ContractType     *string `json:"contract_type"`
	Role             *string `json:"role"`
	Department       *string `json:"department"`
	Site             *string `json:"site"`
	MinSeniority     *int    `json:"min_seniority"`
	MaxSeniority     *int    `json:"max_seniority"`
	CarryOverEnabled bool    `json:"carry_over_enabled"`
	MaxCarryOverDays *int    `json:"max_carry_over_days"`
	Specificity      int     `json:"specificity"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}
