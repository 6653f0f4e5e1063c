package repository

import (
	"strings"
	"time"

	"github.com/MamadouBacke/Scolaria/app/models"
	"gorm.io/gorm"
)

// tenantRepository implements the TenantRepository interface
type tenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a new tenant repository instance
func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{db: db}
}

// Create inserts a new tenant. The unique indexes on domain and the
// embedded admin email/username are the real uniqueness guard; any
// pre-checks callers run are advisory only.
func (r *tenantRepository) Create(tenant *models.Tenant) error {
	return r.db.Create(tenant).Error
}

// GetByID retrieves a tenant by its internal id
func (r *tenantRepository) GetByID(id string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.db.Where("id = ?", id).First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetByDomain retrieves a tenant by its unique domain label
func (r *tenantRepository) GetByDomain(domain string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.db.Where("domain = ?", strings.ToLower(strings.TrimSpace(domain))).First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetByAdminEmail retrieves a tenant by its embedded admin email
func (r *tenantRepository) GetByAdminEmail(email string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.db.Where("admin_email = ?", strings.ToLower(strings.TrimSpace(email))).First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// Update saves the full tenant record
func (r *tenantRepository) Update(tenant *models.Tenant) error {
	return r.db.Save(tenant).Error
}

// UpdateAdminLastLogin touches the embedded admin's last login timestamp
func (r *tenantRepository) UpdateAdminLastLogin(id string) error {
	return r.db.Model(&models.Tenant{}).
		Where("id = ?", id).
		Update("admin_last_login", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

// UpdateAdminPassword replaces the embedded admin's password hash
func (r *tenantRepository) UpdateAdminPassword(id string, passwordHash string) error {
	return r.db.Model(&models.Tenant{}).
		Where("id = ?", id).
		Update("admin_password_hash", passwordHash).Error
}

// UpdateSubscription writes back the embedded subscription. The
// read-compute-write cycle is not transactional; concurrent plan
// changes interleave last-write-wins.
func (r *tenantRepository) UpdateSubscription(id string, sub models.Subscription) error {
	return r.db.Model(&models.Tenant{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"subscription_plan":            sub.Plan,
			"subscription_custom_plan_id":  sub.CustomPlanID,
			"subscription_start_date":      sub.StartDate,
			"subscription_end_date":        sub.EndDate,
			"subscription_max_students":    sub.MaxStudents,
			"subscription_max_teachers":    sub.MaxTeachers,
			"subscription_features":        featuresJSON(sub.Features),
			"subscription_price_per_month": sub.PricePerMonth,
			"subscription_is_active":       sub.IsActive,
			"subscription_pending_plan":    sub.PendingPlan,
			"subscription_pending_plan_at": sub.PendingPlanAt,
		}).Error
}

// Delete soft-deletes a tenant record
func (r *tenantRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Tenant{}).Error
}

// List returns tenants with pagination
func (r *tenantRepository) List(offset, limit int) ([]models.Tenant, error) {
	var tenants []models.Tenant
	err := r.db.Offset(offset).Limit(limit).Order("created_at DESC").Find(&tenants).Error
	return tenants, err
}

// Count returns the total number of tenants
func (r *tenantRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Tenant{}).Count(&count).Error
	return count, err
}

// ListDuePendingPlans returns tenants whose scheduled plan change has
// come due. The sweep worker applies them one by one.
func (r *tenantRepository) ListDuePendingPlans(before time.Time) ([]models.Tenant, error) {
	var tenants []models.Tenant
	err := r.db.
		Where("subscription_pending_plan IS NOT NULL AND subscription_pending_plan_at <= ?", before).
		Find(&tenants).Error
	return tenants, err
}

// CountActiveByCustomPlan counts active-subscription tenants still
// referencing a custom plan. Used by the delete-time referential check.
func (r *tenantRepository) CountActiveByCustomPlan(customPlanID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Tenant{}).
		Where("subscription_custom_plan_id = ? AND subscription_is_active = ?", customPlanID, true).
		Count(&count).Error
	return count, err
}
