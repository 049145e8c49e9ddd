package leavebalance

import (
	"context"
	"sync"
	"testing"

	"go-leave/internal/leavepolicy"
	"go-leave/internal/profile"
	"go-leave/internal/shared/dbtest"
	"go-leave/internal/shared/dbutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticResolver struct {
	policy leavepolicy.LeavePolicy
}

func (s staticResolver) Resolve(_ context.Context, _ profile.Profile, _ leavepolicy.LeaveType) (leavepolicy.LeavePolicy, error) {
	return s.policy, nil
}

func seedBalance(t *testing.T, repo Repository, employeeID uuid.UUID, leaveType leavepolicy.LeaveType, year, total, used int) *LeaveBalance {
	t.Helper()
	b := &LeaveBalance{
		ID:             uuid.New(),
		EmployeeID:     employeeID,
		LeaveType:      leaveType,
		Year:           year,
		TotalAllocated: total,
		DaysUsed:       used,
	}
	outcome, err := repo.InsertIfAbsent(context.Background(), b)
	require.NoError(t, err)
	require.Equal(t, dbutil.Inserted, outcome)
	return b
}

func TestRepository_InsertIfAbsent(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.OpenSQLite(t, &LeaveBalance{}))
	employeeID := uuid.New()

	first := seedBalance(t, repo, employeeID, leavepolicy.LeaveTypeVacation, 2025, 20, 0)

	outcome, err := repo.InsertIfAbsent(ctx, &LeaveBalance{
		ID:             uuid.New(),
		EmployeeID:     employeeID,
		LeaveType:      leavepolicy.LeaveTypeVacation,
		Year:           2025,
		TotalAllocated: 99,
	})
	require.NoError(t, err)
	assert.Equal(t, dbutil.Conflicted, outcome)

	got, err := repo.FindByKey(ctx, employeeID.String(), leavepolicy.LeaveTypeVacation, 2025)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, 20, got.TotalAllocated)

	_, err = repo.FindByKey(ctx, employeeID.String(), leavepolicy.LeaveTypeVacation, 2026)
	assert.ErrorIs(t, err, dbutil.ErrNotFound)
}

func TestRepository_IncrementUsed(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.OpenSQLite(t, &LeaveBalance{}))
	b := seedBalance(t, repo, uuid.New(), leavepolicy.LeaveTypeVacation, 2025, 10, 7)

	ok, err := repo.IncrementUsed(ctx, b.ID.String(), 4)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.IncrementUsed(ctx, b.ID.String(), 3)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.FindByKeyForUpdate(ctx, b.EmployeeID.String(), leavepolicy.LeaveTypeVacation, 2025)
	require.NoError(t, err)
	assert.Equal(t, 10, got.DaysUsed)
	assert.Equal(t, 0, got.Available())

	ok, err = repo.IncrementUsed(ctx, b.ID.String(), 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepository_ListByEmployee(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.OpenSQLite(t, &LeaveBalance{}))
	employeeID := uuid.New()

	seedBalance(t, repo, employeeID, leavepolicy.LeaveTypeVacation, 2024, 20, 20)
	seedBalance(t, repo, employeeID, leavepolicy.LeaveTypeVacation, 2025, 20, 2)
	seedBalance(t, repo, employeeID, leavepolicy.LeaveTypeSick, 2025, 8, 0)
	seedBalance(t, repo, uuid.New(), leavepolicy.LeaveTypeSick, 2025, 8, 0)

	got, err := repo.ListByEmployee(ctx, employeeID.String(), nil)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 2025, got[0].Year)
	assert.Equal(t, leavepolicy.LeaveTypeSick, got[0].LeaveType)
	assert.Equal(t, leavepolicy.LeaveTypeVacation, got[1].LeaveType)
	assert.Equal(t, 2024, got[2].Year)

	year := 2024
	got, err = repo.ListByEmployee(ctx, employeeID.String(), &year)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestProvisioner_SQLiteConcurrent(t *testing.T) {
	const workers = 16

	db := dbtest.OpenSQLite(t, &LeaveBalance{})
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// sqlite has a single writer; one connection keeps the test free of
	// SQLITE_BUSY while still interleaving lookups and inserts.
	sqlDB.SetMaxOpenConns(1)

	repo := NewRepository(db)
	policyID := uuid.New()
	provisioner := NewProvisioner(repo, staticResolver{policy: leavepolicy.LeavePolicy{ID: policyID, DaysAllocated: 20}})
	subject := profile.Profile{ID: uuid.New(), ContractType: profile.ContractFullTime}

	var (
		wg   sync.WaitGroup
		ids  = make([]uuid.UUID, workers)
		errs = make([]error, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := provisioner.GetOrCreate(context.Background(), subject, leavepolicy.LeaveTypeVacation, 2025)
			errs[i] = err
			if b != nil {
				ids[i] = b.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	var count int64
	require.NoError(t, db.Model(&LeaveBalance{}).Where("employee_id = ?", subject.ID.String()).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
