package leaveerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrInvalidLeaveID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidManagerID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid manager id",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave type",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"status must be one of [PENDING APPROVED REJECTED]",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrInvalidDecision = apperror.New(
		apperror.CodeInvalidInput,
		"decision must be one of [APPROVED REJECTED]",
		http.StatusBadRequest,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrLeaveAlreadyActioned = apperror.New(
		apperror.CodeConflict,
		"leave request has already been actioned",
		http.StatusBadRequest,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInsufficientBalance,
		"insufficient leave balance",
		http.StatusBadRequest,
	)
)

// InsufficientBalanceDetails is attached to ErrInsufficientBalance.
type InsufficientBalanceDetails struct {
	RequestedDays int    `json:"requested_days"`
	AvailableDays int    `json:"available_days"`
	LeaveType     string `json:"leave_type"`
	Year          int    `json:"year"`
}

func InsufficientBalance(requested, available int, leaveType string, year int) *apperror.AppError {
	return ErrInsufficientBalance.WithDetails(InsufficientBalanceDetails{
		RequestedDays: requested,
		AvailableDays: available,
		LeaveType:     leaveType,
		Year:          year,
	})
}
