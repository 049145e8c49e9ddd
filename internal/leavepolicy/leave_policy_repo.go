package leavepolicy

import (
	"context"
	"database/sql"

	"go-leave/internal/shared/dbutil"

	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_policy_repo.go -destination=mock/leave_policy_repo_mock.go -package=mock

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, p *LeavePolicy) error
	FindAll(ctx context.Context, leaveType *LeaveType) ([]LeavePolicy, error)
	FindByID(ctx context.Context, id string) (*LeavePolicy, error)
	FindByLeaveType(ctx context.Context, leaveType LeaveType) ([]LeavePolicy, error)
	Update(ctx context.Context, p *LeavePolicy) error
	Delete(ctx context.Context, id string) (bool, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, p *LeavePolicy) error {
	return dbutil.Conn(ctx, r.db, r.tx).Create(p).Error
}

func (r *repository) FindAll(ctx context.Context, leaveType *LeaveType) ([]LeavePolicy, error) {
	var policies []LeavePolicy
	q := dbutil.Conn(ctx, r.db, r.tx).Order("leave_type ASC").Order("name ASC")
	if leaveType != nil {
		q = q.Where("leave_type = ?", *leaveType)
	}
	err := q.Find(&policies).Error
	return policies, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeavePolicy, error) {
	var p LeavePolicy
	err := dbutil.Conn(ctx, r.db, r.tx).First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByLeaveType returns every candidate for resolution. Matching and
// ordering happen in Resolve so the rules stay independent of SQL.
func (r *repository) FindByLeaveType(ctx context.Context, leaveType LeaveType) ([]LeavePolicy, error) {
	var policies []LeavePolicy
	err := dbutil.Conn(ctx, r.db, r.tx).
		Where("leave_type = ?", leaveType).
		Order("created_at ASC").
		Find(&policies).Error
	return policies, err
}

func (r *repository) Update(ctx context.Context, p *LeavePolicy) error {
	return dbutil.Conn(ctx, r.db, r.tx).Save(p).Error
}

func (r *repository) Delete(ctx context.Context, id string) (bool, error) {
	res := dbutil.Conn(ctx, r.db, r.tx).Delete(&LeavePolicy{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}
