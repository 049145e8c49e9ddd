package leavepolicyerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrInvalidPolicyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave policy id",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave type",
		http.StatusBadRequest,
	)
	ErrInvalidSeniorityRange = apperror.New(
		apperror.CodeInvalidInput,
		"min_seniority must be less than or equal max_seniority",
		http.StatusBadRequest,
	)
	ErrPolicyNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave policy not found",
		http.StatusNotFound,
	)
	ErrPolicyNameExists = apperror.New(
		apperror.CodeConflict,
		"leave policy with the same name already exists",
		http.StatusConflict,
	)
	// ErrNoMatchingPolicy is a business outcome: the employee is not entitled
	// to this leave type.
	ErrNoMatchingPolicy = apperror.New(
		apperror.CodeNotEligible,
		"employee is not eligible for this leave type: no matching leave policy",
		http.StatusBadRequest,
	)
)
