package plans

import "strings"

type Plan string

const (
	PlanStarter    Plan = "starter"
	PlanStandard   Plan = "standard"
	PlanEnterprise Plan = "enterprise"
	PlanCustom     Plan = "custom"
)

// Limits is a plan's resource ceilings and enabled feature set.
type Limits struct {
	MaxStudents   int
	MaxTeachers   int
	Features      []string
	PricePerMonth float64
}

// catalog is the static table for non-custom plans. Feature sets are
// complete per plan, not deltas: a plan change always replaces the
// whole set.
var catalog = map[Plan]Limits{
	PlanStarter: {
		MaxStudents:   50,
		MaxTeachers:   5,
		PricePerMonth: 25000,
		Features:      []string{"students", "teachers", "grades"},
	},
	PlanStandard: {
		MaxStudents:   200,
		MaxTeachers:   20,
		PricePerMonth: 50000,
		Features:      []string{"students", "teachers", "grades", "fees", "reports"},
	},
	PlanEnterprise: {
		MaxStudents:   1000,
		MaxTeachers:   100,
		PricePerMonth: 100000,
		Features: []string{
			"students", "teachers", "grades", "fees", "reports",
			"api_access", "custom_domain", "priority_support",
		},
	},
}

func normalizePlan(plan string) Plan {
	return Plan(strings.ToLower(strings.TrimSpace(plan)))
}

// CatalogLimits returns a copy of the static limits for a catalog plan.
// The custom plan is not in the catalog; it dereferences a CustomPlan
// record instead.
func CatalogLimits(plan Plan) (Limits, bool) {
	l, ok := catalog[plan]
	if !ok {
		return Limits{}, false
	}
	out := l
	out.Features = append([]string(nil), l.Features...)
	return out, true
}

func planRank(plan Plan) int {
	switch plan {
	case PlanEnterprise:
		return 3
	case PlanStandard:
		return 2
	case PlanStarter:
		return 1
	default:
		return 0
	}
}

// IsUpgrade reports whether moving from one catalog plan to another
// increases capacity.
func IsUpgrade(from, to Plan) bool {
	return planRank(to) > planRank(from)
}
