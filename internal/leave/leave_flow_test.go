package leave_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"go-leave/internal/leave"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/leavebalance"
	"go-leave/internal/leavepolicy"
	leavepolicyerrors "go-leave/internal/leavepolicy/errors"
	"go-leave/internal/profile"
	"go-leave/internal/shared/dbtest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type leaveStack struct {
	db      *gorm.DB
	sqlDB   *sql.DB
	service leave.Service
}

// newLeaveStack wires real repositories over one sqlite connection, so
// transactions serialize the way row locks would on postgres.
func newLeaveStack(t *testing.T, policies ...leavepolicy.LeavePolicy) *leaveStack {
	t.Helper()
	db := dbtest.OpenSQLite(t, &profile.Profile{}, &leavepolicy.LeavePolicy{}, &leavebalance.LeaveBalance{}, &leave.LeaveRequest{})
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	for i := range policies {
		require.NoError(t, db.Create(&policies[i]).Error)
	}

	policyService := leavepolicy.NewService(sqlDB, leavepolicy.NewRepository(db), nil, 0)
	balances := leavebalance.NewRepository(db)
	provisioner := leavebalance.NewProvisioner(balances, policyService)
	svc := leave.NewService(sqlDB, leave.NewRepository(db), profile.NewRepository(db), balances, provisioner)

	return &leaveStack{db: db, sqlDB: sqlDB, service: svc}
}

func (s *leaveStack) addProfile(t *testing.T, contract profile.ContractType, manager *uuid.UUID) profile.Profile {
	t.Helper()
	p := newEmployee(contract, manager)
	require.NoError(t, s.db.Create(&p).Error)
	return p
}

func (s *leaveStack) balance(t *testing.T, employeeID uuid.UUID, year int) leavebalance.LeaveBalance {
	t.Helper()
	var b leavebalance.LeaveBalance
	require.NoError(t, s.db.Where("employee_id = ? AND leave_type = ? AND year = ?",
		employeeID, leavepolicy.LeaveTypeVacation, year).Take(&b).Error)
	return b
}

func (s *leaveStack) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(model).Count(&n).Error)
	return n
}

func vacationPolicy(name string, days int, contract string) leavepolicy.LeavePolicy {
	p := leavepolicy.LeavePolicy{ID: uuid.New(), Name: name, LeaveType: leavepolicy.LeaveTypeVacation, DaysAllocated: days}
	if contract != "" {
		p.ContractType = &contract
	}
	return p
}

func TestLeaveFlow_SubmitApproveAndRecheck(t *testing.T) {
	ctx := context.Background()
	stack := newLeaveStack(t,
		vacationPolicy("full time vacation", 20, "FULL_TIME"),
		vacationPolicy("default vacation", 10, ""),
	)
	manager := uuid.New()
	employee := stack.addProfile(t, profile.ContractFullTime, &manager)

	created, err := stack.service.Create(ctx, leave.CreateLeaveRequest{
		EmployeeID: employee.ID.String(),
		LeaveType:  "VACATION",
		StartDate:  "2025-12-20",
		EndDate:    "2025-12-22",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, created.DaysRequested)
	assert.Equal(t, leave.StatusPending, created.Status)

	b := stack.balance(t, employee.ID, 2025)
	assert.Equal(t, 20, b.TotalAllocated)
	assert.Equal(t, 0, b.DaysUsed)

	// a stand-in reviewer approves while the manager is away
	delegate := uuid.New()
	approved, err := stack.service.Action(ctx, created.ID, leave.ActionLeaveRequest{
		ManagerID: delegate.String(),
		Decision:  leave.StatusApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, approved.Status)
	assert.Equal(t, 3, stack.balance(t, employee.ID, 2025).DaysUsed)

	_, err = stack.service.Action(ctx, created.ID, leave.ActionLeaveRequest{
		ManagerID: manager.String(),
		Decision:  leave.StatusApproved,
	})
	assert.ErrorIs(t, err, leaveerrors.ErrLeaveAlreadyActioned)
	assert.Equal(t, 3, stack.balance(t, employee.ID, 2025).DaysUsed)

	stored, err := stack.service.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-12-20", stored.StartDate)
	assert.Equal(t, leave.StatusApproved, stored.Status)
	require.NotNil(t, stored.ManagerID)
	assert.Equal(t, manager.String(), *stored.ManagerID)
	require.NotNil(t, stored.ReviewedBy)
	assert.Equal(t, delegate.String(), *stored.ReviewedBy)
}

func TestLeaveFlow_InsufficientBalanceWritesNoRequest(t *testing.T) {
	ctx := context.Background()
	stack := newLeaveStack(t, vacationPolicy("short vacation", 10, ""))
	employee := stack.addProfile(t, profile.ContractFullTime, nil)

	// 7 of 10 days taken leaves 3
	first, err := stack.service.Create(ctx, leave.CreateLeaveRequest{
		EmployeeID: employee.ID.String(),
		LeaveType:  "VACATION",
		StartDate:  "2025-02-03",
		EndDate:    "2025-02-09",
	})
	require.NoError(t, err)
	_, err = stack.service.Action(ctx, first.ID, leave.ActionLeaveRequest{
		ManagerID: uuid.NewString(),
		Decision:  leave.StatusApproved,
	})
	require.NoError(t, err)
	before := stack.count(t, &leave.LeaveRequest{})

	_, err = stack.service.Create(ctx, leave.CreateLeaveRequest{
		EmployeeID: employee.ID.String(),
		LeaveType:  "VACATION",
		StartDate:  "2025-03-03",
		EndDate:    "2025-03-07",
	})

	assert.ErrorIs(t, err, leaveerrors.ErrInsufficientBalance)
	assert.Equal(t, before, stack.count(t, &leave.LeaveRequest{}))
}

func TestLeaveFlow_InternNotEligible(t *testing.T) {
	ctx := context.Background()
	stack := newLeaveStack(t,
		vacationPolicy("full time vacation", 20, "FULL_TIME"),
		vacationPolicy("part time vacation", 10, "PART_TIME"),
	)
	intern := stack.addProfile(t, profile.ContractIntern, nil)

	_, err := stack.service.Create(ctx, leave.CreateLeaveRequest{
		EmployeeID: intern.ID.String(),
		LeaveType:  "VACATION",
		StartDate:  "2025-06-02",
		EndDate:    "2025-06-03",
	})

	assert.ErrorIs(t, err, leavepolicyerrors.ErrNoMatchingPolicy)
	assert.Equal(t, int64(0), stack.count(t, &leavebalance.LeaveBalance{}))
	assert.Equal(t, int64(0), stack.count(t, &leave.LeaveRequest{}))
}

func TestLeaveFlow_ConcurrentApprovalsNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	stack := newLeaveStack(t, vacationPolicy("tight vacation", 5, ""))
	employee := stack.addProfile(t, profile.ContractFullTime, nil)

	// four pending requests of two days each, each fits on its own
	var ids []string
	for _, start := range []string{"2025-04-01", "2025-05-01", "2025-06-01", "2025-07-01"} {
		end := start[:8] + "02"
		resp, err := stack.service.Create(ctx, leave.CreateLeaveRequest{
			EmployeeID: employee.ID.String(),
			LeaveType:  "VACATION",
			StartDate:  start,
			EndDate:    end,
		})
		require.NoError(t, err)
		ids = append(ids, resp.ID)
	}

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		approved     int
		insufficient int
	)
	manager := uuid.NewString()
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := stack.service.Action(ctx, id, leave.ActionLeaveRequest{
				ManagerID: manager,
				Decision:  leave.StatusApproved,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				approved++
			case errors.Is(err, leaveerrors.ErrInsufficientBalance):
				insufficient++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 2, approved)
	assert.Equal(t, 2, insufficient)

	b := stack.balance(t, employee.ID, 2025)
	assert.Equal(t, 4, b.DaysUsed)
	assert.LessOrEqual(t, b.DaysUsed, b.TotalAllocated)

	var pending int64
	require.NoError(t, stack.db.Model(&leave.LeaveRequest{}).Where("status = ?", leave.StatusPending).Count(&pending).Error)
	assert.Equal(t, int64(2), pending)
}
