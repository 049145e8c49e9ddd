package leavepolicy_test

import (
	"testing"
	"time"

	"go-leave/internal/leavepolicy"
	"go-leave/internal/profile"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }

func policy(name string, leaveType leavepolicy.LeaveType, days int, opts ...func(*leavepolicy.LeavePolicy)) leavepolicy.LeavePolicy {
	p := leavepolicy.LeavePolicy{
		ID:            uuid.New(),
		Name:          name,
		LeaveType:     leaveType,
		DaysAllocated: days,
		CreatedAt:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func withContract(v string) func(*leavepolicy.LeavePolicy) {
	return func(p *leavepolicy.LeavePolicy) { p.ContractType = strPtr(v) }
}
func withRole(v string) func(*leavepolicy.LeavePolicy) {
	return func(p *leavepolicy.LeavePolicy) { p.Role = strPtr(v) }
}
func withDepartment(v string) func(*leavepolicy.LeavePolicy) {
	return func(p *leavepolicy.LeavePolicy) { p.Department = strPtr(v) }
}
func withSite(v string) func(*leavepolicy.LeavePolicy) {
	return func(p *leavepolicy.LeavePolicy) { p.Site = strPtr(v) }
}

func fullTimeEngineer() profile.Profile {
	return profile.Profile{
		ID:           uuid.New(),
		FullName:     "Dana Reyes",
		Department:   "Engineering",
		Site:         "Lisbon",
		ContractType: profile.ContractFullTime,
		Role:         "EMPLOYEE",
	}
}

func TestSpecificity(t *testing.T) {
	fallback := policy("fallback", leavepolicy.LeaveTypeVacation, 10)
	assert.Equal(t, 0, leavepolicy.Specificity(fallback))

	contractOnly := policy("contract", leavepolicy.LeaveTypeVacation, 20, withContract("FULL_TIME"))
	everythingElse := policy("narrow", leavepolicy.LeaveTypeVacation, 20,
		withRole("EMPLOYEE"), withDepartment("Engineering"), withSite("Lisbon"),
		func(p *leavepolicy.LeavePolicy) { p.MinSeniority = intPtr(2) })

	// contract type outranks every lower criterion combined
	assert.Greater(t, leavepolicy.Specificity(contractOnly), leavepolicy.Specificity(everythingElse))

	department := policy("dept", leavepolicy.LeaveTypeVacation, 20, withDepartment("Engineering"))
	siteAndSeniority := policy("site", leavepolicy.LeaveTypeVacation, 20, withSite("Lisbon"),
		func(p *leavepolicy.LeavePolicy) { p.MaxSeniority = intPtr(5) })
	assert.Greater(t, leavepolicy.Specificity(department), leavepolicy.Specificity(siteAndSeniority))
}

func TestResolve(t *testing.T) {
	t.Run("most specific policy wins over fallback", func(t *testing.T) {
		p1 := policy("P1 full time vacation", leavepolicy.LeaveTypeVacation, 20, withContract("FULL_TIME"))
		p2 := policy("P2 fallback vacation", leavepolicy.LeaveTypeVacation, 10)

		got, ok := leavepolicy.Resolve([]leavepolicy.LeavePolicy{p2, p1}, fullTimeEngineer(), leavepolicy.LeaveTypeVacation)

		assert.True(t, ok)
		assert.Equal(t, p1.ID, got.ID)
		assert.Equal(t, 20, got.DaysAllocated)
	})

	t.Run("intern without vacation policy is not eligible", func(t *testing.T) {
		policies := []leavepolicy.LeavePolicy{
			policy("full time", leavepolicy.LeaveTypeVacation, 20, withContract("FULL_TIME")),
			policy("part time", leavepolicy.LeaveTypeVacation, 10, withContract("PART_TIME")),
			policy("intern sick", leavepolicy.LeaveTypeSick, 5, withContract("INTERN")),
		}
		intern := fullTimeEngineer()
		intern.ContractType = profile.ContractIntern

		_, ok := leavepolicy.Resolve(policies, intern, leavepolicy.LeaveTypeVacation)
		assert.False(t, ok)
	})

	t.Run("category must match", func(t *testing.T) {
		policies := []leavepolicy.LeavePolicy{policy("sick", leavepolicy.LeaveTypeSick, 8)}
		_, ok := leavepolicy.Resolve(policies, fullTimeEngineer(), leavepolicy.LeaveTypeVacation)
		assert.False(t, ok)
	})

	t.Run("criteria combine with AND", func(t *testing.T) {
		p := policy("eng lisbon", leavepolicy.LeaveTypeVacation, 25, withDepartment("Engineering"), withSite("Porto"))
		_, ok := leavepolicy.Resolve([]leavepolicy.LeavePolicy{p}, fullTimeEngineer(), leavepolicy.LeaveTypeVacation)
		assert.False(t, ok)
	})

	t.Run("unknown profile attribute only matches null criterion", func(t *testing.T) {
		deptPolicy := policy("dept", leavepolicy.LeaveTypeVacation, 22, withDepartment("Engineering"))
		fallback := policy("fallback", leavepolicy.LeaveTypeVacation, 10)
		subject := fullTimeEngineer()
		subject.Department = ""

		got, ok := leavepolicy.Resolve([]leavepolicy.LeavePolicy{deptPolicy, fallback}, subject, leavepolicy.LeaveTypeVacation)
		assert.True(t, ok)
		assert.Equal(t, fallback.ID, got.ID)
	})

	t.Run("role outranks department and site", func(t *testing.T) {
		byRole := policy("role", leavepolicy.LeaveTypeVacation, 18, withRole("EMPLOYEE"))
		byDeptSite := policy("dept site", leavepolicy.LeaveTypeVacation, 30, withDepartment("Engineering"), withSite("Lisbon"))

		got, ok := leavepolicy.Resolve([]leavepolicy.LeavePolicy{byDeptSite, byRole}, fullTimeEngineer(), leavepolicy.LeaveTypeVacation)
		assert.True(t, ok)
		assert.Equal(t, byRole.ID, got.ID)
	})

	t.Run("ties go to the oldest policy", func(t *testing.T) {
		older := policy("older", leavepolicy.LeaveTypeVacation, 20, withContract("FULL_TIME"))
		newer := policy("newer", leavepolicy.LeaveTypeVacation, 15, withContract("FULL_TIME"))
		newer.CreatedAt = older.CreatedAt.Add(time.Hour)

		got, ok := leavepolicy.Resolve([]leavepolicy.LeavePolicy{newer, older}, fullTimeEngineer(), leavepolicy.LeaveTypeVacation)
		assert.True(t, ok)
		assert.Equal(t, older.ID, got.ID)
	})

	t.Run("seniority bounds do not filter", func(t *testing.T) {
		p := policy("veterans", leavepolicy.LeaveTypeVacation, 30, func(p *leavepolicy.LeavePolicy) {
			p.MinSeniority = intPtr(10)
		})
		_, ok := leavepolicy.Resolve([]leavepolicy.LeavePolicy{p}, fullTimeEngineer(), leavepolicy.LeaveTypeVacation)
		assert.True(t, ok)
	})
}
