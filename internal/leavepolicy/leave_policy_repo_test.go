package leavepolicy

import (
	"context"
	"testing"
	"time"

	leavepolicyerrors "go-leave/internal/leavepolicy/errors"
	"go-leave/internal/shared/dbtest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_SQLite(t *testing.T) {
	ctx := context.Background()
	db := dbtest.OpenSQLite(t, &LeavePolicy{})
	repo := NewRepository(db)

	contract := "FULL_TIME"
	older := &LeavePolicy{
		ID:            uuid.New(),
		Name:          "Full time vacation",
		LeaveType:     LeaveTypeVacation,
		DaysAllocated: 20,
		ContractType:  &contract,
		CreatedAt:     time.Now().Add(-time.Hour),
	}
	newer := &LeavePolicy{ID: uuid.New(), Name: "Vacation fallback", LeaveType: LeaveTypeVacation, DaysAllocated: 10}
	sick := &LeavePolicy{ID: uuid.New(), Name: "Sick", LeaveType: LeaveTypeSick, DaysAllocated: 8}

	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	require.NoError(t, repo.Create(ctx, sick))

	t.Run("duplicate name is a conflict", func(t *testing.T) {
		err := repo.Create(ctx, &LeavePolicy{ID: uuid.New(), Name: "Sick", LeaveType: LeaveTypeSick})
		assert.ErrorIs(t, mapRepositoryError(err), leavepolicyerrors.ErrPolicyNameExists)
	})

	t.Run("candidates are scoped to leave type", func(t *testing.T) {
		got, err := repo.FindByLeaveType(ctx, LeaveTypeVacation)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, older.ID, got[0].ID)
		assert.Equal(t, "FULL_TIME", *got[0].ContractType)
		assert.Nil(t, got[1].ContractType)
	})

	t.Run("find all with filter", func(t *testing.T) {
		lt := LeaveTypeSick
		got, err := repo.FindAll(ctx, &lt)
		require.NoError(t, err)
		assert.Len(t, got, 1)

		all, err := repo.FindAll(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("update and delete", func(t *testing.T) {
		sick.DaysAllocated = 12
		require.NoError(t, repo.Update(ctx, sick))

		got, err := repo.FindByID(ctx, sick.ID.String())
		require.NoError(t, err)
		assert.Equal(t, 12, got.DaysAllocated)

		deleted, err := repo.Delete(ctx, sick.ID.String())
		require.NoError(t, err)
		assert.True(t, deleted)

		_, err = repo.FindByID(ctx, sick.ID.String())
		assert.ErrorIs(t, mapRepositoryError(err), leavepolicyerrors.ErrPolicyNotFound)

		deleted, err = repo.Delete(ctx, sick.ID.String())
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("writes inside a transaction roll back", func(t *testing.T) {
		sqlDB, err := db.DB()
		require.NoError(t, err)

		tx, err := sqlDB.BeginTx(ctx, nil)
		require.NoError(t, err)
		p := &LeavePolicy{ID: uuid.New(), Name: "Personal", LeaveType: LeaveTypePersonal, DaysAllocated: 3}
		require.NoError(t, repo.WithTx(tx).Create(ctx, p))
		require.NoError(t, tx.Rollback())

		_, err = repo.FindByID(ctx, p.ID.String())
		assert.Error(t, err)
	})
}
