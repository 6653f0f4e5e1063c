package models

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TENANT_STATUS_ACTIVE    = "active"
	TENANT_STATUS_SUSPENDED = "suspended"
	TENANT_STATUS_PENDING   = "pending"
	TENANT_STATUS_CANCELLED = "cancelled"
)

var domainPattern = regexp.MustCompile(`^[a-z0-9-]{3,50}$`)

// TenantAdmin is the legacy administrator credential embedded in the
// tenant record. It predates the per-tenant user directory and both
// authentication paths must keep working indefinitely. Email and
// username are unique across all tenants, not just within one.
type TenantAdmin struct {
	FirstName    string     `gorm:"type:varchar(100)" json:"first_name" validate:"required,min=2,max=100"`
	LastName     string     `gorm:"type:varchar(100)" json:"last_name" validate:"required,min=2,max=100"`
	Email        string     `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,max=200"`
	Username     string     `gorm:"uniqueIndex;type:varchar(100)" json:"username" validate:"required,min=3,max=100"`
	PasswordHash string     `gorm:"type:text" json:"-"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	LastLogin    *time.Time `gorm:"type:timestamp;default:null" json:"last_login"`
}

// TenantSettings holds per-school configuration.
type TenantSettings struct {
	SchoolType   string `gorm:"type:varchar(50);default:'secondary'" json:"school_type" validate:"omitempty,oneof=primary secondary high_school university"`
	GradingScale string `gorm:"type:varchar(20);default:'20'" json:"grading_scale"`
	Locale       string `gorm:"type:varchar(10);default:'fr'" json:"locale"`
}

// Tenant is one isolated customer partition (a school/establishment),
// identified by a globally unique domain label.
type Tenant struct {
	ID           string         `gorm:"type:char(36);primaryKey" json:"id"`
	Name         string         `gorm:"type:varchar(150)" json:"name" validate:"required,min=3,max=150"`
	Domain       string         `gorm:"uniqueIndex;type:varchar(50)" json:"domain" validate:"required"`
	Email        string         `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,max=200"`
	Status       string         `gorm:"type:varchar(20);default:'active'" json:"status" validate:"oneof=active suspended pending cancelled"`
	Settings     TenantSettings `gorm:"embedded;embeddedPrefix:settings_" json:"settings"`
	Admin        TenantAdmin    `gorm:"embedded;embeddedPrefix:admin_" json:"admin"`
	Subscription Subscription   `gorm:"embedded;embeddedPrefix:subscription_" json:"subscription"`
	LoginCount   uint64         `gorm:"default:0" json:"login_count"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

func (t *Tenant) Validate() error {
	if !domainPattern.MatchString(t.Domain) {
		return ErrInvalidDomain
	}

	v := validator.New()

	return v.Struct(t)
}

// IsActive reports whether the tenant status is active.
func (t *Tenant) IsActive() bool {
	return t.Status == TENANT_STATUS_ACTIVE
}

// CanTransitionTo reports whether a status change is allowed. Cancelled
// is terminal; suspension is recoverable.
func (t *Tenant) CanTransitionTo(status string) bool {
	switch t.Status {
	case TENANT_STATUS_ACTIVE:
		return status == TENANT_STATUS_SUSPENDED || status == TENANT_STATUS_CANCELLED
	case TENANT_STATUS_SUSPENDED:
		return status == TENANT_STATUS_ACTIVE || status == TENANT_STATUS_CANCELLED
	case TENANT_STATUS_PENDING:
		return status == TENANT_STATUS_ACTIVE || status == TENANT_STATUS_CANCELLED
	default:
		return false
	}
}
