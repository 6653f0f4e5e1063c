package models

import (
	"errors"
	"time"
)

const (
	PLAN_STARTER    = "starter"
	PLAN_STANDARD   = "standard"
	PLAN_ENTERPRISE = "enterprise"
	PLAN_CUSTOM     = "custom"
)

var ErrInvalidDomain = errors.New("domain must be 3-50 lowercase letters, digits or hyphens")

// Subscription is embedded in the tenant record. Ceilings and features
// are fully determined by the plan except for "custom", which instead
// references a CustomPlan record by id.
type Subscription struct {
	Plan          string     `gorm:"type:varchar(20);default:'starter'" json:"plan" validate:"oneof=starter standard enterprise custom"`
	CustomPlanID  *string    `gorm:"type:char(36);default:null" json:"custom_plan_id,omitempty"`
	StartDate     time.Time  `gorm:"type:timestamp" json:"start_date"`
	EndDate       time.Time  `gorm:"type:timestamp" json:"end_date"`
	MaxStudents   int        `gorm:"default:50" json:"max_students"`
	MaxTeachers   int        `gorm:"default:5" json:"max_teachers"`
	Features      []string   `gorm:"serializer:json" json:"features"`
	PricePerMonth float64    `gorm:"default:0" json:"price_per_month"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`
	PendingPlan   *string    `gorm:"type:varchar(20);default:null" json:"pending_plan,omitempty"`
	PendingPlanAt *time.Time `gorm:"type:timestamp;default:null" json:"pending_plan_at,omitempty"`
}

// IsExpired reports whether the paid period has elapsed.
func (s *Subscription) IsExpired() bool {
	return time.Now().After(s.EndDate)
}

// HasFeature reports whether a feature is enabled on the current plan.
func (s *Subscription) HasFeature(feature string) bool {
	for _, f := range s.Features {
		if f == feature {
			return true
		}
	}
	return false
}
