package leavebalance

import (
	"context"
	"time"

	leavebalanceerrors "go-leave/internal/leavebalance/errors"
	"go-leave/internal/profile"
	"go-leave/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	ListByEmployee(ctx context.Context, employeeID string, year *int) ([]LeaveBalanceResponse, error)
}

type service struct {
	repo        Repository
	profileRepo profile.Repository
	logger      *zap.Logger
}

func NewService(repo Repository, profileRepo profile.Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("leavebalance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavebalance.service")
	}
	return &service{repo: repo, profileRepo: profileRepo, logger: l}
}

func (s *service) ListByEmployee(ctx context.Context, employeeID string, year *int) ([]LeaveBalanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, leavebalanceerrors.ErrInvalidEmployeeID
	}
	if year != nil && (*year < 1000 || *year > 9999) {
		return nil, leavebalanceerrors.ErrInvalidYear
	}

	if _, err := s.profileRepo.FindByID(ctx, employeeID); err != nil {
		return nil, err
	}

	balances, err := s.repo.ListByEmployee(ctx, employeeID, year)
	if err != nil {
		s.logger.Error("list leave balances failed",
			zap.String("request_id", contextutil.GetRequestID(ctx)),
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return nil, err
	}

	resp := make([]LeaveBalanceResponse, len(balances))
	for i, b := range balances {
		resp[i] = MapToResponse(b)
	}
	return resp, nil
}

func MapToResponse(b LeaveBalance) LeaveBalanceResponse {
	var policyID *string
	if b.PolicyID != nil {
		v := b.PolicyID.String()
		policyID = &v
	}
	return LeaveBalanceResponse{
		ID:              b.ID.String(),
		EmployeeID:      b.EmployeeID.String(),
		LeaveType:       string(b.LeaveType),
		Year:            b.Year,
		TotalAllocated:  b.TotalAllocated,
		DaysUsed:        b.DaysUsed,
		DaysCarriedOver: b.DaysCarriedOver,
		AvailableDays:   b.Available(),
		PolicyID:        policyID,
		CreatedAt:       b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       b.UpdatedAt.Format(time.RFC3339),
	}
}
