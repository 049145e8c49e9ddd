// Package leavebalancetest provides an in-memory leavebalance.Repository for
// service tests that need the unique key and the guarded increment without a
// database.
package leavebalancetest

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go-leave/internal/leavebalance"
	"go-leave/internal/leavepolicy"
	"go-leave/internal/shared/dbutil"
)

type key struct {
	employeeID string
	leaveType  leavepolicy.LeaveType
	year       int
}

// MemoryRepository enforces the (employee, leave type, year) key and applies
// IncrementUsed atomically. Transactions are ignored.
type MemoryRepository struct {
	mu       sync.Mutex
	balances map[key]*leavebalance.LeaveBalance

	// BeforeInsert runs before every insert attempt outside the lock. Tests use
	// it to widen race windows.
	BeforeInsert func()

	inserts   atomic.Int64
	conflicts atomic.Int64
}

func NewMemoryRepository(seed ...leavebalance.LeaveBalance) *MemoryRepository {
	r := &MemoryRepository{balances: make(map[key]*leavebalance.LeaveBalance)}
	for i := range seed {
		b := seed[i]
		r.balances[keyOf(&b)] = &b
	}
	return r
}

func keyOf(b *leavebalance.LeaveBalance) key {
	return key{employeeID: b.EmployeeID.String(), leaveType: b.LeaveType, year: b.Year}
}

func (r *MemoryRepository) WithTx(*sql.Tx) leavebalance.Repository {
	return r
}

func (r *MemoryRepository) FindByKey(_ context.Context, employeeID string, leaveType leavepolicy.LeaveType, year int) (*leavebalance.LeaveBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.balances[key{employeeID: employeeID, leaveType: leaveType, year: year}]
	if !ok {
		return nil, dbutil.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *MemoryRepository) FindByKeyForUpdate(ctx context.Context, employeeID string, leaveType leavepolicy.LeaveType, year int) (*leavebalance.LeaveBalance, error) {
	return r.FindByKey(ctx, employeeID, leaveType, year)
}

func (r *MemoryRepository) InsertIfAbsent(_ context.Context, b *leavebalance.LeaveBalance) (dbutil.InsertOutcome, error) {
	if r.BeforeInsert != nil {
		r.BeforeInsert()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k := keyOf(b)
	if _, ok := r.balances[k]; ok {
		r.conflicts.Add(1)
		return dbutil.Conflicted, nil
	}
	now := time.Now()
	b.CreatedAt, b.UpdatedAt = now, now
	cp := *b
	r.balances[k] = &cp
	r.inserts.Add(1)
	return dbutil.Inserted, nil
}

func (r *MemoryRepository) IncrementUsed(_ context.Context, id string, days int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.balances {
		if b.ID.String() != id {
			continue
		}
		if b.TotalAllocated-b.DaysUsed < days {
			return false, nil
		}
		b.DaysUsed += days
		b.UpdatedAt = time.Now()
		return true, nil
	}
	return false, nil
}

func (r *MemoryRepository) ListByEmployee(_ context.Context, employeeID string, year *int) ([]leavebalance.LeaveBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []leavebalance.LeaveBalance
	for k, b := range r.balances {
		if k.employeeID != employeeID || (year != nil && k.year != *year) {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].LeaveType < out[j].LeaveType
	})
	return out, nil
}

// Len returns the number of stored balances.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.balances)
}

// Inserts returns how many insert attempts created a row.
func (r *MemoryRepository) Inserts() int64 { return r.inserts.Load() }

// Conflicts returns how many insert attempts lost on the unique key.
func (r *MemoryRepository) Conflicts() int64 { return r.conflicts.Load() }
