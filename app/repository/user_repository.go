package repository

import (
	"encoding/json"
	"strings"

	"github.com/MamadouBacke/Scolaria/app/models"
	"gorm.io/gorm"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new directory user in the database
func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByTenantAndEmail retrieves a user by email within a single tenant.
// This is the only lookup the authentication chain is allowed to use;
// cross-tenant email matches must never authenticate.
func (r *userRepository) GetByTenantAndEmail(tenantID, email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("tenant_id = ? AND email = ?", tenantID, strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by email across tenants (password reset
// tooling; emails are only guaranteed unique per tenant, first match wins)
func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update saves the full user record
func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// UpdatePassword replaces the stored password hash
func (r *userRepository) UpdatePassword(id string, passwordHash string) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash).Error
}

// UpdateLastLogin touches the last login timestamp
func (r *userRepository) UpdateLastLogin(id string) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

// Delete soft-deletes a user record
func (r *userRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.User{}).Error
}

// ListByTenant returns a tenant's users with pagination
func (r *userRepository) ListByTenant(tenantID string, offset, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("tenant_id = ?", tenantID).
		Offset(offset).Limit(limit).Order("created_at DESC").Find(&users).Error
	return users, err
}

// CountByTenantAndRole counts a tenant's users holding a given role.
// Consumed by the subscription ceiling checks.
func (r *userRepository) CountByTenantAndRole(tenantID, role string) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("tenant_id = ? AND role = ?", tenantID, role).
		Count(&count).Error
	return count, err
}

// featuresJSON serializes a feature list for column-level updates that
// bypass the model serializer.
func featuresJSON(features []string) string {
	if features == nil {
		features = []string{}
	}
	b, _ := json.Marshal(features)
	return string(b)
}
