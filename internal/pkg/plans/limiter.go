package plans

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/MamadouBacke/Scolaria/app/models"
	"github.com/MamadouBacke/Scolaria/app/repository"
	"github.com/MamadouBacke/Scolaria/internal/pkg/apperrors"
)

var (
	ErrStudentLimitReached = errors.New("student ceiling reached for the current plan")
	ErrTeacherLimitReached = errors.New("teacher ceiling reached for the current plan")
)

// Limiter exposes the active plan's resource ceilings to the CRUD
// modules. For catalog plans this is a static table lookup; for the
// custom plan it dereferences the tenant's CustomPlan record.
type Limiter struct {
	customPlans repository.CustomPlanRepository
	users       repository.UserRepository
}

// NewLimiter creates a limiter from injected repositories.
func NewLimiter(customPlans repository.CustomPlanRepository, users repository.UserRepository) *Limiter {
	return &Limiter{customPlans: customPlans, users: users}
}

// LimitsFor resolves the ceilings and feature set for a tenant's
// current subscription.
func (l *Limiter) LimitsFor(tenant *models.Tenant) (Limits, error) {
	plan := normalizePlan(tenant.Subscription.Plan)
	if plan != PlanCustom {
		limits, ok := CatalogLimits(plan)
		if !ok {
			return Limits{}, fmt.Errorf("%w: %s", apperrors.ErrPlanNotFound, tenant.Subscription.Plan)
		}
		return limits, nil
	}

	if tenant.Subscription.CustomPlanID == nil || *tenant.Subscription.CustomPlanID == "" {
		return Limits{}, apperrors.ErrCustomPlanNotFound
	}
	cp, err := l.customPlans.GetByID(*tenant.Subscription.CustomPlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Limits{}, apperrors.ErrCustomPlanNotFound
		}
		return Limits{}, err
	}
	return Limits{
		MaxStudents:   cp.MaxStudents,
		MaxTeachers:   cp.MaxTeachers,
		Features:      append([]string(nil), cp.Features...),
		PricePerMonth: cp.PricePerMonth,
	}, nil
}

// CheckStudentCeiling fails when creating one more student would exceed
// the tenant's plan ceiling.
func (l *Limiter) CheckStudentCeiling(tenant *models.Tenant) error {
	limits, err := l.LimitsFor(tenant)
	if err != nil {
		return err
	}
	count, err := l.users.CountByTenantAndRole(tenant.ID, models.ROLE_STUDENT)
	if err != nil {
		return err
	}
	if count >= int64(limits.MaxStudents) {
		return ErrStudentLimitReached
	}
	return nil
}

// CheckTeacherCeiling fails when creating one more teacher would exceed
// the tenant's plan ceiling.
func (l *Limiter) CheckTeacherCeiling(tenant *models.Tenant) error {
	limits, err := l.LimitsFor(tenant)
	if err != nil {
		return err
	}
	count, err := l.users.CountByTenantAndRole(tenant.ID, models.ROLE_TEACHER)
	if err != nil {
		return err
	}
	if count >= int64(limits.MaxTeachers) {
		return ErrTeacherLimitReached
	}
	return nil
}
