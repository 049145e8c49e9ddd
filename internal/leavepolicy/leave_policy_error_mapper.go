package leavepolicy

import (
	"errors"

	leavepolicyerrors "go-leave/internal/leavepolicy/errors"
	"go-leave/internal/shared/dbutil"

	"gorm.io/gorm"
)

const uniquePolicyNameConstraint = "uq_leave_policy_name"

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leavepolicyerrors.ErrPolicyNotFound
	}
	if dbutil.IsUniqueViolation(err, uniquePolicyNameConstraint) {
		return leavepolicyerrors.ErrPolicyNameExists
	}
	return err
}
