package repository

import (
	"github.com/MamadouBacke/Scolaria/app/models"
	"gorm.io/gorm"
)

// customPlanRepository implements the CustomPlanRepository interface
type customPlanRepository struct {
	db *gorm.DB
}

// NewCustomPlanRepository creates a new custom plan repository instance
func NewCustomPlanRepository(db *gorm.DB) CustomPlanRepository {
	return &customPlanRepository{db: db}
}

// Create creates a new custom plan
func (r *customPlanRepository) Create(plan *models.CustomPlan) error {
	return r.db.Create(plan).Error
}

// GetByID retrieves a custom plan by ID
func (r *customPlanRepository) GetByID(id string) (*models.CustomPlan, error) {
	var plan models.CustomPlan
	err := r.db.Where("id = ?", id).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetByName retrieves a custom plan by its unique name
func (r *customPlanRepository) GetByName(name string) (*models.CustomPlan, error) {
	var plan models.CustomPlan
	err := r.db.Where("name = ?", name).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// Update saves the full custom plan record
func (r *customPlanRepository) Update(plan *models.CustomPlan) error {
	return r.db.Save(plan).Error
}

// Delete soft-deletes a custom plan. Callers must run the referential
// check against active subscriptions first.
func (r *customPlanRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.CustomPlan{}).Error
}

// List returns all custom plans
func (r *customPlanRepository) List() ([]models.CustomPlan, error) {
	var plans []models.CustomPlan
	err := r.db.Order("created_at DESC").Find(&plans).Error
	return plans, err
}
