package leavebalance

import (
	"context"

	"go-leave/internal/leavepolicy"
	"go-leave/internal/profile"
	"go-leave/internal/shared/dbutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const uniqueBalanceKeyConstraint = "uq_leave_balance_key"

// Provisioner returns the balance for a key, creating it from the resolved
// policy on first use.
type Provisioner interface {
	GetOrCreate(ctx context.Context, subject profile.Profile, leaveType leavepolicy.LeaveType, year int) (*LeaveBalance, error)
}

type provisioner struct {
	repo     Repository
	resolver leavepolicy.Resolver
	logger   *zap.Logger
}

func NewProvisioner(repo Repository, resolver leavepolicy.Resolver, logger ...*zap.Logger) Provisioner {
	l := zap.L().Named("leavebalance.provisioner")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavebalance.provisioner")
	}
	return &provisioner{repo: repo, resolver: resolver, logger: l}
}

// GetOrCreate never surfaces the provisioning race: a concurrent creator
// losing on the unique key re-reads and returns the winner's row. Policy
// ineligibility is returned as is and no row is written.
func (p *provisioner) GetOrCreate(ctx context.Context, subject profile.Profile, leaveType leavepolicy.LeaveType, year int) (*LeaveBalance, error) {
	employeeID := subject.ID.String()

	balance, created, err := dbutil.GetOrInsert(ctx,
		func(ctx context.Context) (*LeaveBalance, error) {
			return p.repo.FindByKey(ctx, employeeID, leaveType, year)
		},
		func(ctx context.Context) (*LeaveBalance, error) {
			policy, err := p.resolver.Resolve(ctx, subject, leaveType)
			if err != nil {
				return nil, err
			}
			return &LeaveBalance{
				ID:             uuid.New(),
				EmployeeID:     subject.ID,
				LeaveType:      leaveType,
				Year:           year,
				TotalAllocated: policy.DaysAllocated,
				PolicyID:       &policy.ID,
			}, nil
		},
		func(ctx context.Context, b *LeaveBalance) (dbutil.InsertOutcome, error) {
			return p.repo.InsertIfAbsent(ctx, b)
		},
		func(err error) bool {
			return dbutil.IsUniqueViolation(err, uniqueBalanceKeyConstraint)
		},
	)
	if err != nil {
		return nil, err
	}

	if created {
		p.logger.Info("leave balance provisioned",
			zap.String("employee_id", employeeID),
			zap.String("leave_type", string(leaveType)),
			zap.Int("year", year),
			zap.Int("total_allocated", balance.TotalAllocated),
		)
	}
	return balance, nil
}
