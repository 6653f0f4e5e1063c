package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomPlan is an operator-defined, non-catalog ceiling/feature bundle
// referenced by Tenant.Subscription.CustomPlanID. It cannot be deleted
// while an active tenant subscription still references it; that
// referential invariant is enforced at delete time, not by a foreign
// key constraint.
type CustomPlan struct {
	ID            string         `gorm:"type:char(36);primaryKey" json:"id"`
	Name          string         `gorm:"uniqueIndex;type:varchar(100)" json:"name" validate:"required,min=3,max=100"`
	MaxStudents   int            `gorm:"not null" json:"max_students" validate:"required,min=1"`
	MaxTeachers   int            `gorm:"not null" json:"max_teachers" validate:"required,min=1"`
	Features      []string       `gorm:"serializer:json" json:"features"`
	PricePerMonth float64        `gorm:"not null" json:"price_per_month" validate:"min=0"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *CustomPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (p *CustomPlan) Validate() error {
	v := validator.New()

	return v.Struct(p)
}
