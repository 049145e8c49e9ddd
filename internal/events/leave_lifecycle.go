package events

import "time"

const LeaveLifecycleTopic = "hr.leave.lifecycle.v1"

const (
	LeaveCreated  = "leave.created"
	LeaveActioned = "leave.actioned"
)

// LeaveSnapshot is the request as it was when the event was recorded.
type LeaveSnapshot struct {
	ID            string     `json:"id"`
	EmployeeID    string     `json:"employee_id"`
	LeaveType     string     `json:"leave_type"`
	StartDate     string     `json:"start_date"`
	EndDate       string     `json:"end_date"`
	DaysRequested int        `json:"days_requested"`
	Reason        string     `json:"reason,omitempty"`
	Status        string     `json:"status"`
	ManagerID     *string    `json:"manager_id,omitempty"`
	ReviewedBy    *string    `json:"reviewed_by,omitempty"`
	ReviewReason  *string    `json:"review_reason,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
}

type ProfileSnapshot struct {
	ID           string  `json:"id"`
	FullName     string  `json:"full_name"`
	Department   string  `json:"department,omitempty"`
	Site         string  `json:"site,omitempty"`
	ContractType string  `json:"contract_type,omitempty"`
	Role         string  `json:"role,omitempty"`
	ManagerID    *string `json:"manager_id,omitempty"`
}

// LeaveCreatedEvent asks the employee's manager to review a request.
type LeaveCreatedEvent struct {
	EventType  string          `json:"event_type"`
	RequestID  string          `json:"request_id,omitempty"`
	Leave      LeaveSnapshot   `json:"leave"`
	Profile    ProfileSnapshot `json:"profile"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// LeaveActionedEvent tells the employee the outcome of a review.
type LeaveActionedEvent struct {
	EventType  string          `json:"event_type"`
	RequestID  string          `json:"request_id,omitempty"`
	Leave      LeaveSnapshot   `json:"leave"`
	Profile    ProfileSnapshot `json:"profile"`
	Status     string          `json:"status"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Envelope is the part every lifecycle payload shares. Consumers decode it
// first to pick the concrete event type.
type Envelope struct {
	EventType string `json:"event_type"`
	RequestID string `json:"request_id,omitempty"`
}
