package leavepolicy

import (
	"sort"

	"go-leave/internal/profile"
)

// Criterion weights. Each weight is larger than the sum of all weights below
// it, so comparing Specificity orders policies lexicographically by
// (contract type, role, department, site, seniority).
const (
	WeightContractType = 1 << 4
	WeightRole         = 1 << 3
	WeightDepartment   = 1 << 2
	WeightSite         = 1 << 1
	WeightSeniority    = 1 << 0
)

// Specificity scores how narrowly a policy targets employees.
func Specificity(p LeavePolicy) int {
	score := 0
	if p.ContractType != nil {
		score += WeightContractType
	}
	if p.Role != nil {
		score += WeightRole
	}
	if p.Department != nil {
		score += WeightDepartment
	}
	if p.Site != nil {
		score += WeightSite
	}
	if p.MinSeniority != nil || p.MaxSeniority != nil {
		score += WeightSeniority
	}
	return score
}

// Matches reports whether p applies to the employee for leaveType. Unknown
// (empty) profile attributes only match nil criteria.
func Matches(p LeavePolicy, subject profile.Profile, leaveType LeaveType) bool {
	return p.LeaveType == leaveType &&
		matchCriterion(p.ContractType, string(subject.ContractType)) &&
		matchCriterion(p.Role, subject.Role) &&
		matchCriterion(p.Department, subject.Department) &&
		matchCriterion(p.Site, subject.Site)
}

func matchCriterion(criterion *string, value string) bool {
	if criterion == nil {
		return true
	}
	return value != "" && *criterion == value
}

// Resolve picks the most specific matching policy. Ties go to the oldest
// policy, then to the lowest id, so the choice is stable across calls.
func Resolve(candidates []LeavePolicy, subject profile.Profile, leaveType LeaveType) (LeavePolicy, bool) {
	matched := make([]LeavePolicy, 0, len(candidates))
	for _, p := range candidates {
		if Matches(p, subject, leaveType) {
			matched = append(matched, p)
		}
	}
	if len(matched) == 0 {
		return LeavePolicy{}, false
	}

	sort.SliceStable(matched, func(i, j int) bool {
		si, sj := Specificity(matched[i]), Specificity(matched[j])
		if si != sj {
			return si > sj
		}
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})
	return matched[0], true
}
