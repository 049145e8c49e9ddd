package leave

import (
	"context"
	"database/sql"
	"errors"

	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/shared/dbutil"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error)
	ListByEmployee(ctx context.Context, employeeID string, status string) ([]LeaveRequest, error)
	Update(ctx context.Context, l *LeaveRequest) error
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

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return dbutil.Conn(ctx, r.db, r.tx).Create(l).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	return findByID(dbutil.Conn(ctx, r.db, r.tx), id)
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error) {
	return findByID(dbutil.Conn(ctx, r.db, r.tx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func findByID(conn *gorm.DB, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	if err := conn.Take(&l, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrLeaveNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *repository) ListByEmployee(ctx context.Context, employeeID string, status string) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	q := dbutil.Conn(ctx, r.db, r.tx).
		Where("employee_id = ?", employeeID).
		Order("start_date DESC").
		Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&leaves).Error
	return leaves, err
}

func (r *repository) Update(ctx context.Context, l *LeaveRequest) error {
	return dbutil.Conn(ctx, r.db, r.tx).Save(l).Error
}
