package leavebalance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go-leave/internal/leavepolicy"
	"go-leave/internal/shared/dbutil"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// FindByKey returns dbutil.ErrNotFound when no balance exists.
	FindByKey(ctx context.Context, employeeID string, leaveType leavepolicy.LeaveType, year int) (*LeaveBalance, error)
	// FindByKeyForUpdate is FindByKey holding a row lock until the
	// surrounding transaction ends.
	FindByKeyForUpdate(ctx context.Context, employeeID string, leaveType leavepolicy.LeaveType, year int) (*LeaveBalance, error)
	InsertIfAbsent(ctx context.Context, b *LeaveBalance) (dbutil.InsertOutcome, error)
	IncrementUsed(ctx context.Context, id string, days int) (bool, error)
	ListByEmployee(ctx context.Context, employeeID string, year *int) ([]LeaveBalance, error)
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

func (r *repository) FindByKey(ctx context.Context, employeeID string, leaveType leavepolicy.LeaveType, year int) (*LeaveBalance, error) {
	return r.findByKey(dbutil.Conn(ctx, r.db, r.tx), employeeID, leaveType, year)
}

func (r *repository) FindByKeyForUpdate(ctx context.Context, employeeID string, leaveType leavepolicy.LeaveType, year int) (*LeaveBalance, error) {
	conn := dbutil.Conn(ctx, r.db, r.tx).Clauses(clause.Locking{Strength: "UPDATE"})
	return r.findByKey(conn, employeeID, leaveType, year)
}

func (r *repository) findByKey(conn *gorm.DB, employeeID string, leaveType leavepolicy.LeaveType, year int) (*LeaveBalance, error) {
	var b LeaveBalance
	err := conn.
		Where("employee_id = ? AND leave_type = ? AND year = ?", employeeID, leaveType, year).
		Take(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dbutil.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// InsertIfAbsent reports Conflicted when another writer already owns the
// (employee_id, leave_type, year) key.
func (r *repository) InsertIfAbsent(ctx context.Context, b *LeaveBalance) (dbutil.InsertOutcome, error) {
	res := dbutil.Conn(ctx, r.db, r.tx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "employee_id"},
				{Name: "leave_type"},
				{Name: "year"},
			},
			DoNothing: true,
		}).
		Create(b)
	if res.Error != nil {
		return dbutil.Conflicted, res.Error
	}
	if res.RowsAffected == 0 {
		return dbutil.Conflicted, nil
	}
	return dbutil.Inserted, nil
}

// IncrementUsed adds days to days_used only while enough quota is left. It
// returns false when the guard rejected the update.
func (r *repository) IncrementUsed(ctx context.Context, id string, days int) (bool, error) {
	res := dbutil.Conn(ctx, r.db, r.tx).
		Model(&LeaveBalance{}).
		Where("id = ? AND total_allocated - days_used >= ?", id, days).
		Updates(map[string]any{
			"days_used":  gorm.Expr("days_used + ?", days),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) ListByEmployee(ctx context.Context, employeeID string, year *int) ([]LeaveBalance, error) {
	var balances []LeaveBalance
	q := dbutil.Conn(ctx, r.db, r.tx).
		Where("employee_id = ?", employeeID).
		Order("year DESC").
		Order("leave_type ASC")
	if year != nil {
		q = q.Where("year = ?", *year)
	}
	err := q.Find(&balances).Error
	return balances, err
}
