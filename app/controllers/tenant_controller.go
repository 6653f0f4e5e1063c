package controllers

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/MamadouBacke/Scolaria/app/models"
	"github.com/MamadouBacke/Scolaria/app/repository"
	"github.com/MamadouBacke/Scolaria/internal/pkg/apperrors"
	"github.com/MamadouBacke/Scolaria/internal/pkg/mail"
	"github.com/MamadouBacke/Scolaria/internal/pkg/password"
	"github.com/MamadouBacke/Scolaria/internal/pkg/plans"
	"github.com/MamadouBacke/Scolaria/internal/pkg/tenantcontext"
)

// HandleCreateTenant onboards a new establishment. The legacy admin
// credential is auto-generated and the plaintext is returned exactly
// once, in this response. Uniqueness of domain and admin email/username
// is guarded by the storage layer; a losing concurrent writer gets a
// plain conflict, not a crash.
func HandleCreateTenant(c *fiber.Ctx) error {
	var input struct {
		Name     string                `json:"name" form:"name"`
		Domain   string                `json:"domain" form:"domain"`
		Email    string                `json:"email" form:"email"`
		Plan     string                `json:"plan" form:"plan"`
		Months   int                   `json:"months" form:"months"`
		Settings models.TenantSettings `json:"settings"`
		Admin    struct {
			FirstName string `json:"first_name" form:"first_name"`
			LastName  string `json:"last_name" form:"last_name"`
			Email     string `json:"email" form:"email"`
			Username  string `json:"username" form:"username"`
		} `json:"admin"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Format de requete invalide",
		})
	}

	planName := strings.ToLower(strings.TrimSpace(input.Plan))
	if planName == "" {
		planName = string(plans.PlanStarter)
	}
	limits, ok := plans.CatalogLimits(plans.Plan(planName))
	if !ok {
		return respondError(c, apperrors.ErrPlanNotFound)
	}
	months := input.Months
	if months <= 0 {
		months = 1
	}

	plaintext, err := password.Generate()
	if err != nil {
		return respondError(c, err)
	}
	hash, err := password.Hash(plaintext)
	if err != nil {
		return respondError(c, err)
	}

	now := time.Now()
	tenant := &models.Tenant{
		Name:     input.Name,
		Domain:   strings.ToLower(strings.TrimSpace(input.Domain)),
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Status:   models.TENANT_STATUS_ACTIVE,
		Settings: input.Settings,
		Admin: models.TenantAdmin{
			FirstName:    input.Admin.FirstName,
			LastName:     input.Admin.LastName,
			Email:        strings.ToLower(strings.TrimSpace(input.Admin.Email)),
			Username:     strings.TrimSpace(input.Admin.Username),
			PasswordHash: hash,
			IsActive:     true,
		},
		Subscription: models.Subscription{
			Plan:          planName,
			StartDate:     now,
			EndDate:       now.AddDate(0, months, 0),
			MaxStudents:   limits.MaxStudents,
			MaxTeachers:   limits.MaxTeachers,
			Features:      limits.Features,
			PricePerMonth: limits.PricePerMonth,
			IsActive:      true,
		},
	}
	if err := tenant.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	repos := repository.GetGlobalRepositories()
	if err := repos.Tenant.Create(tenant); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return respondError(c, apperrors.ErrConflict)
		}
		return respondError(c, err)
	}

	// Best-effort notification; never fails the request.
	go func() {
		if err := mail.SendWelcomeEmail(tenant.Admin.Email, tenant.Name, tenant.Domain, tenant.Admin.Username); err != nil {
			log.Printf("onboarding: welcome email to %s failed: %v", tenant.Admin.Email, err)
		}
	}()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":        true,
		"tenant":         tenant,
		"admin_password": plaintext,
	})
}

// HandleGetTenant returns a tenant by internal id. Unlike the
// unauthenticated resolution path, admin tooling gets a real 404 for a
// missing tenant; that split is deliberate.
func HandleGetTenant(c *fiber.Ctx) error {
	tenant, err := repository.GetGlobalRepositories().Tenant.GetByID(c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Etablissement introuvable",
			})
		}
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "tenant": tenant})
}

// HandleListTenants returns tenants with pagination.
func HandleListTenants(c *fiber.Ctx) error {
	offset, limit := paginationParams(c)
	repos := repository.GetGlobalRepositories()

	tenants, err := repos.Tenant.List(offset, limit)
	if err != nil {
		return respondError(c, err)
	}
	total, err := repos.Tenant.Count()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"tenants": tenants,
		"total":   total,
		"offset":  offset,
		"limit":   limit,
	})
}

// HandleUpdateTenantStatus applies a status transition (suspend,
// reactivate, cancel). Invalid transitions are client errors; the
// record itself is never deleted by a status change.
func HandleUpdateTenantStatus(c *fiber.Ctx) error {
	var input struct {
		Status string `json:"status" form:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Format de requete invalide",
		})
	}

	repos := repository.GetGlobalRepositories()
	tenant, err := repos.Tenant.GetByID(c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Etablissement introuvable",
			})
		}
		return respondError(c, err)
	}

	if !tenant.CanTransitionTo(input.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Transition de statut non autorisee",
		})
	}
	tenant.Status = input.Status
	if err := repos.Tenant.Update(tenant); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "tenant": tenant})
}

// HandleGetTenantLimits exposes the resolved tenant's plan ceilings to
// the CRUD modules. Runs behind the tenant guard.
func HandleGetTenantLimits(c *fiber.Ctx) error {
	tenant := tenantcontext.GetTenant(c)
	if tenant == nil {
		return respondError(c, apperrors.ErrMissingTenantSignal)
	}

	limits, err := getLimiter().LimitsFor(tenant)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"limits": fiber.Map{
			"max_students": limits.MaxStudents,
			"max_teachers": limits.MaxTeachers,
			"features":     limits.Features,
		},
	})
}
