package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MamadouBacke/Scolaria/internal/pkg/password"
)

const (
	ROLE_ADMIN   = "admin"
	ROLE_TEACHER = "teacher"
	ROLE_STUDENT = "student"
	ROLE_PARENT  = "parent"

	STATUS_ACTIVE   = "active"
	STATUS_INACTIVE = "inactive"
	STATUS_DISABLED = "disabled"
)

// User is a directory principal scoped to exactly one tenant. The email
// is unique per tenant, not globally. A user may exist without
// credentials (PasswordHash nil): provisioning flows create directory
// entries for students/teachers before any password is set.
type User struct {
	ID           string         `gorm:"type:char(36);primaryKey" json:"id"`
	TenantID     string         `gorm:"type:char(36);uniqueIndex:idx_users_tenant_email;not null" json:"tenant_id" validate:"required"`
	FirstName    string         `gorm:"type:varchar(100)" json:"first_name" validate:"required,min=2,max=100"`
	LastName     string         `gorm:"type:varchar(100)" json:"last_name" validate:"required,min=2,max=100"`
	Email        string         `gorm:"uniqueIndex:idx_users_tenant_email;type:varchar(200)" json:"email" validate:"required,email,max=200"`
	Role         string         `gorm:"type:varchar(20);default:'student'" json:"role" validate:"oneof=admin teacher student parent"`
	Status       string         `gorm:"type:varchar(20);default:'active'" json:"status" validate:"oneof=active inactive disabled"`
	PasswordHash *string        `gorm:"type:text;default:null" json:"-"`
	Permissions  []string       `gorm:"serializer:json" json:"permissions"`
	LastLogin    *time.Time     `gorm:"type:timestamp;default:null" json:"last_login"`
	LoginCount   uint64         `gorm:"default:0" json:"login_count"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// IsActive reports whether the user status is active.
func (u *User) IsActive() bool {
	return u.Status == STATUS_ACTIVE
}

// CheckPassword verifies the given plaintext against the stored hash.
// Users without credentials never authenticate.
func (u *User) CheckPassword(plaintext string) bool {
	if u.PasswordHash == nil || *u.PasswordHash == "" {
		return false
	}
	return password.Verify(plaintext, *u.PasswordHash)
}

// SetPassword hashes and stores a new password for the user.
func (u *User) SetPassword(plaintext string) error {
	hash, err := password.Hash(plaintext)
	if err != nil {
		return err
	}
	u.PasswordHash = &hash
	return nil
}

// DefaultPermissions returns the full permission set for a role. The
// set is always recomputed from scratch on role change, never merged
// with the previous one.
func DefaultPermissions(role string) []string {
	switch role {
	case ROLE_ADMIN:
		return []string{
			"manage_school",
			"manage_users",
			"manage_students",
			"manage_teachers",
			"manage_grades",
			"manage_fees",
			"view_reports",
		}
	case ROLE_TEACHER:
		return []string{
			"view_students",
			"manage_grades",
			"view_reports",
		}
	case ROLE_STUDENT:
		return []string{
			"view_grades",
			"view_fees",
		}
	case ROLE_PARENT:
		return []string{
			"view_grades",
			"view_fees",
			"view_reports",
		}
	default:
		return []string{}
	}
}

// HasPermission reports whether the user carries a given permission.
func (u *User) HasPermission(perm string) bool {
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
