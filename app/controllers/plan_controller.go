package controllers

import (
	"errors"
	"sync"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/MamadouBacke/Scolaria/app/models"
	"github.com/MamadouBacke/Scolaria/app/repository"
	"github.com/MamadouBacke/Scolaria/internal/pkg/apperrors"
	"github.com/MamadouBacke/Scolaria/internal/pkg/plans"
)

var (
	planService     *plans.Service
	planServiceOnce sync.Once
	limiter         *plans.Limiter
	limiterOnce     sync.Once
)

func getPlanService() *plans.Service {
	planServiceOnce.Do(func() {
		repos := repository.GetGlobalRepositories()
		planService = plans.NewService(repos.Tenant, repos.CustomPlan)
	})
	return planService
}

func getLimiter() *plans.Limiter {
	limiterOnce.Do(func() {
		repos := repository.GetGlobalRepositories()
		limiter = plans.NewLimiter(repos.CustomPlan, repos.User)
	})
	return limiter
}

type planChangeInput struct {
	Plan         string `json:"plan" form:"plan"`
	Months       int    `json:"months" form:"months"`
	CustomPlanID string `json:"custom_plan_id" form:"custom_plan_id"`
}

// planChangeError keeps the admin-tooling 404 for missing tenants while
// everything else goes through the standard mapping.
func planChangeError(c *fiber.Ctx, err error) error {
	if errors.Is(err, apperrors.ErrTenantNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Etablissement introuvable",
		})
	}
	return respondError(c, err)
}

// HandleUpgradePlan moves the tenant to a bigger catalog plan, or to a
// custom plan when custom_plan_id is given.
func HandleUpgradePlan(c *fiber.Ctx) error {
	var input planChangeInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Format de requete invalide",
		})
	}

	var (
		tenant  *models.Tenant
		invoice *plans.Invoice
		err     error
	)
	if input.CustomPlanID != "" {
		tenant, invoice, err = getPlanService().AssignCustomPlan(c.Params("id"), input.CustomPlanID, input.Months)
	} else {
		tenant, invoice, err = getPlanService().Upgrade(c.Params("id"), input.Plan, input.Months)
	}
	if err != nil {
		return planChangeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "tenant": tenant, "invoice": invoice})
}

// HandleDowngradePlan schedules a smaller plan for the end of the
// current paid period.
func HandleDowngradePlan(c *fiber.Ctx) error {
	var input planChangeInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Format de requete invalide",
		})
	}

	tenant, invoice, err := getPlanService().Downgrade(c.Params("id"), input.Plan, input.Months)
	if err != nil {
		return planChangeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "tenant": tenant, "invoice": invoice})
}

// HandleRenewPlan restarts the current plan's period at now.
func HandleRenewPlan(c *fiber.Ctx) error {
	var input planChangeInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Format de requete invalide",
		})
	}

	tenant, invoice, err := getPlanService().Renew(c.Params("id"), input.Months)
	if err != nil {
		return planChangeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "tenant": tenant, "invoice": invoice})
}

// HandleCancelPlan deactivates the subscription; capability runs until
// the already-paid period elapses.
func HandleCancelPlan(c *fiber.Ctx) error {
	tenant, invoice, err := getPlanService().Cancel(c.Params("id"))
	if err != nil {
		return planChangeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "tenant": tenant, "invoice": invoice})
}

// HandleCreateCustomPlan creates an operator-defined plan.
func HandleCreateCustomPlan(c *fiber.Ctx) error {
	var plan models.CustomPlan
	if err := c.BodyParser(&plan); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Format de requete invalide",
		})
	}
	if err := plan.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	if err := repository.GetGlobalRepositories().CustomPlan.Create(&plan); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return respondError(c, apperrors.ErrConflict)
		}
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "custom_plan": plan})
}

// HandleListCustomPlans returns all operator-defined plans.
func HandleListCustomPlans(c *fiber.Ctx) error {
	list, err := repository.GetGlobalRepositories().CustomPlan.List()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "custom_plans": list})
}

// HandleDeleteCustomPlan deletes an operator plan unless an active
// subscription still references it.
func HandleDeleteCustomPlan(c *fiber.Ctx) error {
	if err := getPlanService().DeleteCustomPlan(c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
