package scoring

import (
	"assessment_results_backend/internal/util"
	"fmt"

	"github.com/shopspring/decimal"
)

// RoundingPolicy selects how report averages are cut to two decimals.
type RoundingPolicy int

const (
	RoundDown RoundingPolicy = iota
	RoundHalfUp
)

func (p RoundingPolicy) String() string {
	switch p {
	case RoundDown:
		return "ROUND_DOWN"
	case RoundHalfUp:
		return "ROUND_HALF_UP"
	}
	return fmt.Sprintf("RoundingPolicy(%d)", int(p))
}

// Divide returns sum/n at the given places under the policy. n <= 0 yields zero.
func (p RoundingPolicy) Divide(sum decimal.Decimal, n int, places int32) decimal.Decimal {
	if n <= 0 {
		return decimal.Zero
	}
	d := decimal.NewFromInt(int64(n))
	if p == RoundHalfUp {
		return sum.DivRound(d, places)
	}
	q, _ := sum.QuoRem(d, places)
	return q
}

// ReportScope names the page a rollup is computed for.
type ReportScope string

const (
	ScopeProvince ReportScope = "PROVINCE"
	ScopeStaging  ReportScope = "STAGING"
	ScopeSchool   ReportScope = "SCHOOL"
	ScopeDistrict ReportScope = "DISTRICT"
	ScopePublic   ReportScope = "PUBLIC"
)

// Province and staging aggregates truncate; school, district and public
// cohort pages round half up. Both are published behaviour.
var scopePolicies = map[ReportScope]RoundingPolicy{
	ScopeProvince: RoundDown,
	ScopeStaging:  RoundDown,
	ScopeSchool:   RoundHalfUp,
	ScopeDistrict: RoundHalfUp,
	ScopePublic:   RoundHalfUp,
}

func PolicyFor(scope ReportScope) (RoundingPolicy, error) {
	p, ok := scopePolicies[scope]
	if !ok {
		return RoundDown, fmt.Errorf("%w: %q", util.ErrUnknownReportScope, scope)
	}
	return p, nil
}

// Average divides the sum of values by the cohort size to two decimals.
func Average(values []decimal.Decimal, policy RoundingPolicy) decimal.Decimal {
	return policy.Divide(decimal.Sum(decimal.Zero, values...), len(values), reportPlaces)
}
