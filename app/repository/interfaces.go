package repository

import (
	"time"

	"github.com/MamadouBacke/Scolaria/app/models"
	"gorm.io/gorm"
)

// TenantRepository defines the interface for tenant-related database operations
type TenantRepository interface {
	Create(tenant *models.Tenant) error
	GetByID(id string) (*models.Tenant, error)
	GetByDomain(domain string) (*models.Tenant, error)
	GetByAdminEmail(email string) (*models.Tenant, error)
	Update(tenant *models.Tenant) error
	UpdateAdminLastLogin(id string) error
	UpdateAdminPassword(id string, passwordHash string) error
	UpdateSubscription(id string, sub models.Subscription) error
	Delete(id string) error
	List(offset, limit int) ([]models.Tenant, error)
	Count() (int64, error)
	CountActiveByCustomPlan(customPlanID string) (int64, error)
	ListDuePendingPlans(before time.Time) ([]models.Tenant, error)
}

// UserRepository defines the interface for directory-user database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByTenantAndEmail(tenantID, email string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	UpdatePassword(id string, passwordHash string) error
	UpdateLastLogin(id string) error
	Delete(id string) error
	ListByTenant(tenantID string, offset, limit int) ([]models.User, error)
	CountByTenantAndRole(tenantID, role string) (int64, error)
}

// CustomPlanRepository defines the interface for custom plan operations
type CustomPlanRepository interface {
	Create(plan *models.CustomPlan) error
	GetByID(id string) (*models.CustomPlan, error)
	GetByName(name string) (*models.CustomPlan, error)
	Update(plan *models.CustomPlan) error
	Delete(id string) error
	List() ([]models.CustomPlan, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	Tenant     TenantRepository
	User       UserRepository
	CustomPlan CustomPlanRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Tenant:     NewTenantRepository(db),
		User:       NewUserRepository(db),
		CustomPlan: NewCustomPlanRepository(db),
	}
}
