package plans

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/MamadouBacke/Scolaria/app/models"
	"github.com/MamadouBacke/Scolaria/internal/pkg/apperrors"
)

type fakeTenantRepo struct {
	tenants map[string]*models.Tenant
}

func newFakeTenantRepo(tenants ...*models.Tenant) *fakeTenantRepo {
	r := &fakeTenantRepo{tenants: make(map[string]*models.Tenant)}
	for _, t := range tenants {
		r.tenants[t.ID] = t
	}
	return r
}

func (r *fakeTenantRepo) Create(tenant *models.Tenant) error {
	r.tenants[tenant.ID] = tenant
	return nil
}

func (r *fakeTenantRepo) GetByID(id string) (*models.Tenant, error) {
	t, ok := r.tenants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (r *fakeTenantRepo) GetByDomain(domain string) (*models.Tenant, error) {
	for _, t := range r.tenants {
		if t.Domain == domain {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTenantRepo) GetByAdminEmail(email string) (*models.Tenant, error) {
	for _, t := range r.tenants {
		if t.Admin.Email == email {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTenantRepo) Update(tenant *models.Tenant) error {
	r.tenants[tenant.ID] = tenant
	return nil
}

func (r *fakeTenantRepo) UpdateAdminLastLogin(id string) error { return nil }

func (r *fakeTenantRepo) UpdateAdminPassword(id string, passwordHash string) error {
	t, ok := r.tenants[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Admin.PasswordHash = passwordHash
	return nil
}

func (r *fakeTenantRepo) UpdateSubscription(id string, sub models.Subscription) error {
	t, ok := r.tenants[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Subscription = sub
	return nil
}

func (r *fakeTenantRepo) Delete(id string) error {
	delete(r.tenants, id)
	return nil
}

func (r *fakeTenantRepo) List(offset, limit int) ([]models.Tenant, error) {
	var out []models.Tenant
	for _, t := range r.tenants {
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeTenantRepo) Count() (int64, error) {
	return int64(len(r.tenants)), nil
}

func (r *fakeTenantRepo) CountActiveByCustomPlan(customPlanID string) (int64, error) {
	var count int64
	for _, t := range r.tenants {
		if t.Subscription.CustomPlanID != nil && *t.Subscription.CustomPlanID == customPlanID && t.Subscription.IsActive {
			count++
		}
	}
	return count, nil
}

func (r *fakeTenantRepo) ListDuePendingPlans(before time.Time) ([]models.Tenant, error) {
	var out []models.Tenant
	for _, t := range r.tenants {
		if t.Subscription.PendingPlan != nil && t.Subscription.PendingPlanAt != nil && !t.Subscription.PendingPlanAt.After(before) {
			out = append(out, *t)
		}
	}
	return out, nil
}

type fakeCustomPlanRepo struct {
	plans map[string]*models.CustomPlan
}

func newFakeCustomPlanRepo(plans ...*models.CustomPlan) *fakeCustomPlanRepo {
	r := &fakeCustomPlanRepo{plans: make(map[string]*models.CustomPlan)}
	for _, p := range plans {
		r.plans[p.ID] = p
	}
	return r
}

func (r *fakeCustomPlanRepo) Create(plan *models.CustomPlan) error {
	r.plans[plan.ID] = plan
	return nil
}

func (r *fakeCustomPlanRepo) GetByID(id string) (*models.CustomPlan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *fakeCustomPlanRepo) GetByName(name string) (*models.CustomPlan, error) {
	for _, p := range r.plans {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCustomPlanRepo) Update(plan *models.CustomPlan) error {
	r.plans[plan.ID] = plan
	return nil
}

func (r *fakeCustomPlanRepo) Delete(id string) error {
	delete(r.plans, id)
	return nil
}

func (r *fakeCustomPlanRepo) List() ([]models.CustomPlan, error) {
	var out []models.CustomPlan
	for _, p := range r.plans {
		out = append(out, *p)
	}
	return out, nil
}

func starterTenant(id string) *models.Tenant {
	now := time.Now()
	return &models.Tenant{
		ID:     id,
		Name:   "Ecole Primaire Les Manguiers",
		Domain: "manguiers",
		Status: models.TENANT_STATUS_ACTIVE,
		Subscription: models.Subscription{
			Plan:          models.PLAN_STARTER,
			StartDate:     now.AddDate(0, -1, 0),
			EndDate:       now.AddDate(0, 1, 0),
			MaxStudents:   50,
			MaxTeachers:   5,
			Features:      []string{"students", "teachers", "grades"},
			PricePerMonth: 25000,
			IsActive:      true,
		},
	}
}

func TestUpgradeReplacesSubscription(t *testing.T) {
	tenant := starterTenant("t1")
	repo := newFakeTenantRepo(tenant)
	svc := NewService(repo, newFakeCustomPlanRepo())

	before := time.Now()
	updated, inv, err := svc.Upgrade("t1", "enterprise", 12)
	if err != nil {
		t.Fatalf("Upgrade: %v", err)
	}

	sub := updated.Subscription
	if sub.Plan != models.PLAN_ENTERPRISE {
		t.Fatalf("Plan = %q, want enterprise", sub.Plan)
	}
	if sub.MaxStudents != 1000 || sub.MaxTeachers != 100 {
		t.Fatalf("ceilings not replaced: %d/%d", sub.MaxStudents, sub.MaxTeachers)
	}
	if sub.StartDate.Before(before) {
		t.Fatalf("window must restart at upgrade time")
	}
	wantEnd := sub.StartDate.AddDate(0, 12, 0)
	if !sub.EndDate.Equal(wantEnd) {
		t.Fatalf("EndDate = %v, want %v", sub.EndDate, wantEnd)
	}
	// The feature set is recomputed in full, never unioned with the old one.
	enterprise, _ := CatalogLimits(PlanEnterprise)
	if len(sub.Features) != len(enterprise.Features) {
		t.Fatalf("Features = %v, want full enterprise set", sub.Features)
	}
	if inv.Total != 1416000 {
		t.Fatalf("invoice Total = %v, want 1416000", inv.Total)
	}

	stored, _ := repo.GetByID("t1")
	if stored.Subscription.Plan != models.PLAN_ENTERPRISE {
		t.Fatalf("subscription not persisted")
	}
}

func TestUpgradeUnknownPlan(t *testing.T) {
	svc := NewService(newFakeTenantRepo(starterTenant("t1")), newFakeCustomPlanRepo())

	_, _, err := svc.Upgrade("t1", "gold", 1)
	if !errors.Is(err, apperrors.ErrPlanNotFound) {
		t.Fatalf("err = %v, want ErrPlanNotFound", err)
	}
}

func TestUpgradeUnknownTenant(t *testing.T) {
	svc := NewService(newFakeTenantRepo(), newFakeCustomPlanRepo())

	_, _, err := svc.Upgrade("missing", "standard", 1)
	if !errors.Is(err, apperrors.ErrTenantNotFound) {
		t.Fatalf("err = %v, want ErrTenantNotFound", err)
	}
}

func TestDowngradeIsDeferred(t *testing.T) {
	tenant := starterTenant("t1")
	tenant.Subscription.Plan = models.PLAN_ENTERPRISE
	tenant.Subscription.MaxStudents = 1000
	tenant.Subscription.MaxTeachers = 100
	paidUntil := tenant.Subscription.EndDate
	repo := newFakeTenantRepo(tenant)
	svc := NewService(repo, newFakeCustomPlanRepo())

	updated, inv, err := svc.Downgrade("t1", "starter", 1)
	if err != nil {
		t.Fatalf("Downgrade: %v", err)
	}

	sub := updated.Subscription
	if sub.Plan != models.PLAN_ENTERPRISE {
		t.Fatalf("current plan must stay until period end, got %q", sub.Plan)
	}
	if sub.MaxStudents != 1000 {
		t.Fatalf("current ceilings must stay as paid for")
	}
	if !sub.EndDate.Equal(paidUntil) {
		t.Fatalf("EndDate must not move on downgrade")
	}
	if sub.PendingPlan == nil || *sub.PendingPlan != models.PLAN_STARTER {
		t.Fatalf("pending plan not recorded")
	}
	if sub.PendingPlanAt == nil || !sub.PendingPlanAt.Equal(paidUntil) {
		t.Fatalf("pending plan must take effect at period end")
	}
	if inv.Plan != models.PLAN_STARTER {
		t.Fatalf("invoice must price the new plan, got %q", inv.Plan)
	}
}

func TestRenewResetsWindowAndClearsPending(t *testing.T) {
	tenant := starterTenant("t1")
	pending := models.PLAN_STARTER
	at := tenant.Subscription.EndDate
	tenant.Subscription.PendingPlan = &pending
	tenant.Subscription.PendingPlanAt = &at
	tenant.Subscription.IsActive = false
	repo := newFakeTenantRepo(tenant)
	svc := NewService(repo, newFakeCustomPlanRepo())

	before := time.Now()
	updated, inv, err := svc.Renew("t1", 6)
	if err != nil {
		t.Fatalf("Renew: %v", err)
	}

	sub := updated.Subscription
	if sub.StartDate.Before(before) {
		t.Fatalf("window must restart at renewal time")
	}
	if !sub.EndDate.Equal(sub.StartDate.AddDate(0, 6, 0)) {
		t.Fatalf("EndDate = %v, want start+6 months", sub.EndDate)
	}
	if !sub.IsActive {
		t.Fatalf("renewal must reactivate the subscription")
	}
	if sub.PendingPlan != nil || sub.PendingPlanAt != nil {
		t.Fatalf("renewal must clear any scheduled plan change")
	}
	if inv.Months != 6 || inv.MonthlyPrice != 25000 {
		t.Fatalf("invoice = %+v, want 6 months at 25000", inv)
	}
}

func TestCancelKeepsEndDate(t *testing.T) {
	tenant := starterTenant("t1")
	paidUntil := tenant.Subscription.EndDate
	repo := newFakeTenantRepo(tenant)
	svc := NewService(repo, newFakeCustomPlanRepo())

	updated, inv, err := svc.Cancel("t1")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	if updated.Subscription.IsActive {
		t.Fatalf("cancel must deactivate the subscription")
	}
	if !updated.Subscription.EndDate.Equal(paidUntil) {
		t.Fatalf("cancel must keep the already-paid end date")
	}
	if inv == nil {
		t.Fatalf("cancel must return an invoice like every plan change")
	}
	if inv.Months != 0 || inv.Subtotal != 0 || inv.Total != 0 {
		t.Fatalf("cancel invoice must be zero-amount, got %+v", inv)
	}
	if inv.Plan != models.PLAN_STARTER {
		t.Fatalf("cancel invoice must record the cancelled plan, got %q", inv.Plan)
	}
}

func TestAssignCustomPlan(t *testing.T) {
	cp := &models.CustomPlan{
		ID:            "cp1",
		Name:          "Reseau Scolaire National",
		MaxStudents:   5000,
		MaxTeachers:   400,
		Features:      []string{"students", "teachers", "grades", "api_access"},
		PricePerMonth: 350000,
	}
	tenant := starterTenant("t1")
	repo := newFakeTenantRepo(tenant)
	svc := NewService(repo, newFakeCustomPlanRepo(cp))

	updated, inv, err := svc.AssignCustomPlan("t1", "cp1", 3)
	if err != nil {
		t.Fatalf("AssignCustomPlan: %v", err)
	}

	sub := updated.Subscription
	if sub.Plan != models.PLAN_CUSTOM {
		t.Fatalf("Plan = %q, want custom", sub.Plan)
	}
	if sub.CustomPlanID == nil || *sub.CustomPlanID != "cp1" {
		t.Fatalf("custom plan reference not recorded")
	}
	if sub.MaxStudents != 5000 {
		t.Fatalf("ceilings not materialized from the custom plan")
	}
	if inv.MonthlyPrice != 350000 || inv.Months != 3 {
		t.Fatalf("invoice = %+v", inv)
	}
}

func TestAssignCustomPlanUnknown(t *testing.T) {
	svc := NewService(newFakeTenantRepo(starterTenant("t1")), newFakeCustomPlanRepo())

	_, _, err := svc.AssignCustomPlan("t1", "missing", 1)
	if !errors.Is(err, apperrors.ErrCustomPlanNotFound) {
		t.Fatalf("err = %v, want ErrCustomPlanNotFound", err)
	}
}

func TestApplyDueDowngrade(t *testing.T) {
	tenant := starterTenant("t1")
	tenant.Subscription.Plan = models.PLAN_ENTERPRISE
	pending := models.PLAN_STARTER
	due := time.Now().Add(-time.Hour)
	tenant.Subscription.PendingPlan = &pending
	tenant.Subscription.PendingPlanAt = &due
	repo := newFakeTenantRepo(tenant)
	svc := NewService(repo, newFakeCustomPlanRepo())

	updated, err := svc.ApplyDueDowngrade("t1")
	if err != nil {
		t.Fatalf("ApplyDueDowngrade: %v", err)
	}

	sub := updated.Subscription
	if sub.Plan != models.PLAN_STARTER {
		t.Fatalf("Plan = %q, want starter", sub.Plan)
	}
	if sub.MaxStudents != 50 || sub.MaxTeachers != 5 {
		t.Fatalf("ceilings must be recomputed from the new plan")
	}
	if sub.PendingPlan != nil || sub.PendingPlanAt != nil {
		t.Fatalf("pending markers must be cleared after applying")
	}
	if !sub.StartDate.Equal(due) {
		t.Fatalf("new window must start at the scheduled time")
	}
}

func TestApplyDueDowngradeNotYetDue(t *testing.T) {
	tenant := starterTenant("t1")
	pending := models.PLAN_STARTER
	future := time.Now().Add(24 * time.Hour)
	tenant.Subscription.Plan = models.PLAN_ENTERPRISE
	tenant.Subscription.PendingPlan = &pending
	tenant.Subscription.PendingPlanAt = &future
	repo := newFakeTenantRepo(tenant)
	svc := NewService(repo, newFakeCustomPlanRepo())

	updated, err := svc.ApplyDueDowngrade("t1")
	if err != nil {
		t.Fatalf("ApplyDueDowngrade: %v", err)
	}
	if updated.Subscription.Plan != models.PLAN_ENTERPRISE {
		t.Fatalf("a future plan change must not apply early")
	}
	if updated.Subscription.PendingPlan == nil {
		t.Fatalf("pending markers must stay until due")
	}
}

func TestApplyDueDowngradesSweep(t *testing.T) {
	due := starterTenant("t1")
	due.Subscription.Plan = models.PLAN_ENTERPRISE
	pending := models.PLAN_STANDARD
	past := time.Now().Add(-time.Hour)
	due.Subscription.PendingPlan = &pending
	due.Subscription.PendingPlanAt = &past

	notDue := starterTenant("t2")
	notDue.Domain = "autre-ecole"
	future := time.Now().Add(24 * time.Hour)
	pending2 := models.PLAN_STARTER
	notDue.Subscription.PendingPlan = &pending2
	notDue.Subscription.PendingPlanAt = &future

	repo := newFakeTenantRepo(due, notDue)
	svc := NewService(repo, newFakeCustomPlanRepo())

	applied, errs := svc.ApplyDueDowngrades()
	if len(errs) != 0 {
		t.Fatalf("sweep errors: %v", errs)
	}
	if applied != 1 {
		t.Fatalf("applied = %d, want 1", applied)
	}

	swept, _ := repo.GetByID("t1")
	if swept.Subscription.Plan != models.PLAN_STANDARD {
		t.Fatalf("due tenant not moved: %q", swept.Subscription.Plan)
	}
	untouched, _ := repo.GetByID("t2")
	if untouched.Subscription.Plan != models.PLAN_STARTER {
		t.Fatalf("future tenant must not be touched")
	}
}

func TestDeleteCustomPlanInUse(t *testing.T) {
	cp := &models.CustomPlan{ID: "cp1", Name: "Reseau", MaxStudents: 100, MaxTeachers: 10, PricePerMonth: 100000}
	tenant := starterTenant("t1")
	cpID := "cp1"
	tenant.Subscription.Plan = models.PLAN_CUSTOM
	tenant.Subscription.CustomPlanID = &cpID
	svc := NewService(newFakeTenantRepo(tenant), newFakeCustomPlanRepo(cp))

	err := svc.DeleteCustomPlan("cp1")
	if !errors.Is(err, apperrors.ErrCustomPlanInUse) {
		t.Fatalf("err = %v, want ErrCustomPlanInUse", err)
	}
}

func TestDeleteCustomPlanUnreferenced(t *testing.T) {
	cp := &models.CustomPlan{ID: "cp1", Name: "Reseau", MaxStudents: 100, MaxTeachers: 10, PricePerMonth: 100000}
	cpRepo := newFakeCustomPlanRepo(cp)
	svc := NewService(newFakeTenantRepo(starterTenant("t1")), cpRepo)

	if err := svc.DeleteCustomPlan("cp1"); err != nil {
		t.Fatalf("DeleteCustomPlan: %v", err)
	}
	if _, err := cpRepo.GetByID("cp1"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("plan should be gone")
	}
}

func TestDeleteCustomPlanInactiveReferenceDoesNotBlock(t *testing.T) {
	cp := &models.CustomPlan{ID: "cp1", Name: "Reseau", MaxStudents: 100, MaxTeachers: 10, PricePerMonth: 100000}
	tenant := starterTenant("t1")
	cpID := "cp1"
	tenant.Subscription.Plan = models.PLAN_CUSTOM
	tenant.Subscription.CustomPlanID = &cpID
	tenant.Subscription.IsActive = false
	svc := NewService(newFakeTenantRepo(tenant), newFakeCustomPlanRepo(cp))

	if err := svc.DeleteCustomPlan("cp1"); err != nil {
		t.Fatalf("an inactive reference must not block deletion: %v", err)
	}
}
