package plans

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/MamadouBacke/Scolaria/app/models"
	"github.com/MamadouBacke/Scolaria/app/repository"
	"github.com/MamadouBacke/Scolaria/internal/pkg/apperrors"
)

// Service implements the plan-change operations. The read-compute-write
// cycle is deliberately not wrapped in a transaction: concurrent plan
// changes on the same tenant interleave last-write-wins.
type Service struct {
	tenants     repository.TenantRepository
	customPlans repository.CustomPlanRepository
}

// NewService creates a plan service from injected repositories.
func NewService(tenants repository.TenantRepository, customPlans repository.CustomPlanRepository) *Service {
	return &Service{tenants: tenants, customPlans: customPlans}
}

// Upgrade moves a tenant to a catalog plan for a number of months. The
// date window restarts at now and the ceilings and feature set are
// recomputed in full from the new plan.
func (s *Service) Upgrade(tenantID, planName string, months int) (*models.Tenant, *Invoice, error) {
	if months <= 0 {
		months = 1
	}
	plan := normalizePlan(planName)
	limits, ok := CatalogLimits(plan)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrPlanNotFound, planName)
	}

	tenant, err := s.getTenant(tenantID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	tenant.Subscription = models.Subscription{
		Plan:          string(plan),
		StartDate:     now,
		EndDate:       now.AddDate(0, months, 0),
		MaxStudents:   limits.MaxStudents,
		MaxTeachers:   limits.MaxTeachers,
		Features:      limits.Features,
		PricePerMonth: limits.PricePerMonth,
		IsActive:      true,
	}
	if err := s.tenants.UpdateSubscription(tenant.ID, tenant.Subscription); err != nil {
		return nil, nil, err
	}

	invoice := ComputeInvoice(tenant.ID, string(plan), months, limits.PricePerMonth)
	return tenant, &invoice, nil
}

// AssignCustomPlan puts a tenant on an operator-defined plan. Ceilings
// are dereferenced from the CustomPlan record on every LimitsFor call,
// but the embedded subscription keeps a materialized copy for display.
func (s *Service) AssignCustomPlan(tenantID, customPlanID string, months int) (*models.Tenant, *Invoice, error) {
	if months <= 0 {
		months = 1
	}
	cp, err := s.customPlans.GetByID(customPlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrCustomPlanNotFound
		}
		return nil, nil, err
	}

	tenant, err := s.getTenant(tenantID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	tenant.Subscription = models.Subscription{
		Plan:          string(PlanCustom),
		CustomPlanID:  &cp.ID,
		StartDate:     now,
		EndDate:       now.AddDate(0, months, 0),
		MaxStudents:   cp.MaxStudents,
		MaxTeachers:   cp.MaxTeachers,
		Features:      append([]string(nil), cp.Features...),
		PricePerMonth: cp.PricePerMonth,
		IsActive:      true,
	}
	if err := s.tenants.UpdateSubscription(tenant.ID, tenant.Subscription); err != nil {
		return nil, nil, err
	}

	invoice := ComputeInvoice(tenant.ID, string(PlanCustom), months, cp.PricePerMonth)
	return tenant, &invoice, nil
}

// Downgrade schedules a move to a smaller catalog plan. Nothing changes
// immediately: the current end date, ceilings and features stay as paid
// for, and the new plan takes effect at period end.
func (s *Service) Downgrade(tenantID, planName string, months int) (*models.Tenant, *Invoice, error) {
	if months <= 0 {
		months = 1
	}
	plan := normalizePlan(planName)
	limits, ok := CatalogLimits(plan)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrPlanNotFound, planName)
	}

	tenant, err := s.getTenant(tenantID)
	if err != nil {
		return nil, nil, err
	}

	pending := string(plan)
	effectiveAt := tenant.Subscription.EndDate
	tenant.Subscription.PendingPlan = &pending
	tenant.Subscription.PendingPlanAt = &effectiveAt
	if err := s.tenants.UpdateSubscription(tenant.ID, tenant.Subscription); err != nil {
		return nil, nil, err
	}

	// Priced on the target plan, not the current one: the current
	// period is already paid for.
	invoice := ComputeInvoice(tenant.ID, pending, months, limits.PricePerMonth)
	return tenant, &invoice, nil
}

// Renew extends the current plan: the date window restarts at now for
// the given number of months and the ceilings are refreshed from the
// catalog in case the static table changed since the last renewal.
func (s *Service) Renew(tenantID string, months int) (*models.Tenant, *Invoice, error) {
	if months <= 0 {
		months = 1
	}
	tenant, err := s.getTenant(tenantID)
	if err != nil {
		return nil, nil, err
	}

	plan := normalizePlan(tenant.Subscription.Plan)
	monthly := tenant.Subscription.PricePerMonth
	if plan != PlanCustom {
		limits, ok := CatalogLimits(plan)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrPlanNotFound, tenant.Subscription.Plan)
		}
		tenant.Subscription.MaxStudents = limits.MaxStudents
		tenant.Subscription.MaxTeachers = limits.MaxTeachers
		tenant.Subscription.Features = limits.Features
		tenant.Subscription.PricePerMonth = limits.PricePerMonth
		monthly = limits.PricePerMonth
	}

	now := time.Now()
	tenant.Subscription.StartDate = now
	tenant.Subscription.EndDate = now.AddDate(0, months, 0)
	tenant.Subscription.IsActive = true
	tenant.Subscription.PendingPlan = nil
	tenant.Subscription.PendingPlanAt = nil
	if err := s.tenants.UpdateSubscription(tenant.ID, tenant.Subscription); err != nil {
		return nil, nil, err
	}

	invoice := ComputeInvoice(tenant.ID, string(plan), months, monthly)
	return tenant, &invoice, nil
}

// Cancel deactivates the subscription but keeps the end date: the
// tenant retains full capability until the already-paid period elapses.
// Nothing is charged; the invoice is a zero-amount record of the event.
func (s *Service) Cancel(tenantID string) (*models.Tenant, *Invoice, error) {
	tenant, err := s.getTenant(tenantID)
	if err != nil {
		return nil, nil, err
	}

	tenant.Subscription.IsActive = false
	tenant.Subscription.PendingPlan = nil
	tenant.Subscription.PendingPlanAt = nil
	if err := s.tenants.UpdateSubscription(tenant.ID, tenant.Subscription); err != nil {
		return nil, nil, err
	}

	invoice := ComputeInvoice(tenant.ID, tenant.Subscription.Plan, 0, tenant.Subscription.PricePerMonth)
	return tenant, &invoice, nil
}

// ApplyDueDowngrade applies a scheduled downgrade once the current
// period has elapsed. Meant to be run by operator tooling or a cron
// sweep; a no-op when nothing is due.
func (s *Service) ApplyDueDowngrade(tenantID string) (*models.Tenant, error) {
	tenant, err := s.getTenant(tenantID)
	if err != nil {
		return nil, err
	}

	sub := tenant.Subscription
	if sub.PendingPlan == nil || sub.PendingPlanAt == nil || time.Now().Before(*sub.PendingPlanAt) {
		return tenant, nil
	}

	plan := normalizePlan(*sub.PendingPlan)
	limits, ok := CatalogLimits(plan)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrPlanNotFound, *sub.PendingPlan)
	}

	start := *sub.PendingPlanAt
	tenant.Subscription = models.Subscription{
		Plan:          string(plan),
		StartDate:     start,
		EndDate:       start.AddDate(0, 1, 0),
		MaxStudents:   limits.MaxStudents,
		MaxTeachers:   limits.MaxTeachers,
		Features:      limits.Features,
		PricePerMonth: limits.PricePerMonth,
		IsActive:      sub.IsActive,
	}
	if err := s.tenants.UpdateSubscription(tenant.ID, tenant.Subscription); err != nil {
		return nil, err
	}
	return tenant, nil
}

// ApplyDueDowngrades sweeps all tenants with a scheduled plan change
// whose period has elapsed and applies each one. Returns the number of
// tenants moved; a failed tenant is logged by the caller and does not
// abort the rest of the sweep.
func (s *Service) ApplyDueDowngrades() (int, []error) {
	due, err := s.tenants.ListDuePendingPlans(time.Now())
	if err != nil {
		return 0, []error{err}
	}

	applied := 0
	var errs []error
	for i := range due {
		if _, err := s.ApplyDueDowngrade(due[i].ID); err != nil {
			errs = append(errs, fmt.Errorf("tenant %s: %w", due[i].ID, err))
			continue
		}
		applied++
	}
	return applied, errs
}

// DeleteCustomPlan removes an operator plan unless an active tenant
// subscription still references it.
func (s *Service) DeleteCustomPlan(customPlanID string) error {
	if _, err := s.customPlans.GetByID(customPlanID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCustomPlanNotFound
		}
		return err
	}
	count, err := s.tenants.CountActiveByCustomPlan(customPlanID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.ErrCustomPlanInUse
	}
	return s.customPlans.Delete(customPlanID)
}

func (s *Service) getTenant(tenantID string) (*models.Tenant, error) {
	tenant, err := s.tenants.GetByID(tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTenantNotFound
		}
		return nil, err
	}
	return tenant, nil
}
