package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/MamadouBacke/Scolaria/app/models"
	"github.com/MamadouBacke/Scolaria/app/repository"
	"github.com/MamadouBacke/Scolaria/internal/pkg/apperrors"
	"github.com/MamadouBacke/Scolaria/internal/pkg/plans"
	"github.com/MamadouBacke/Scolaria/internal/pkg/tenantcontext"
)

// HandleCreateUser provisions a directory user inside the resolved
// tenant. Students and teachers count against the plan ceilings; a
// password is optional at provisioning time.
func HandleCreateUser(c *fiber.Ctx) error {
	tenant := tenantcontext.GetTenant(c)
	if tenant == nil {
		return respondError(c, apperrors.ErrMissingTenantSignal)
	}

	var input struct {
		FirstName string `json:"first_name" form:"first_name"`
		LastName  string `json:"last_name" form:"last_name"`
		Email     string `json:"email" form:"email"`
		Role      string `json:"role" form:"role"`
		Password  string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Format de requete invalide",
		})
	}

	role := strings.ToLower(strings.TrimSpace(input.Role))
	if role == "" {
		role = models.ROLE_STUDENT
	}

	switch role {
	case models.ROLE_STUDENT:
		if err := getLimiter().CheckStudentCeiling(tenant); err != nil {
			return ceilingError(c, err)
		}
	case models.ROLE_TEACHER:
		if err := getLimiter().CheckTeacherCeiling(tenant); err != nil {
			return ceilingError(c, err)
		}
	}

	user := &models.User{
		TenantID:    tenant.ID,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		Role:        role,
		Status:      models.STATUS_ACTIVE,
		Permissions: models.DefaultPermissions(role),
	}
	if input.Password != "" {
		if err := user.SetPassword(input.Password); err != nil {
			return respondError(c, err)
		}
	}
	if err := user.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	if err := repository.GetGlobalRepositories().User.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return respondError(c, apperrors.ErrConflict)
		}
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "user": user})
}

// HandleListUsers returns the resolved tenant's directory with
// pagination.
func HandleListUsers(c *fiber.Ctx) error {
	tenant := tenantcontext.GetTenant(c)
	if tenant == nil {
		return respondError(c, apperrors.ErrMissingTenantSignal)
	}

	offset, limit := paginationParams(c)
	users, err := repository.GetGlobalRepositories().User.ListByTenant(tenant.ID, offset, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"users":   users,
		"offset":  offset,
		"limit":   limit,
	})
}

// HandleUpdateUserRole changes a user's role. The permission set is
// recomputed in full from the new role, never merged with the old one.
func HandleUpdateUserRole(c *fiber.Ctx) error {
	tenant := tenantcontext.GetTenant(c)
	if tenant == nil {
		return respondError(c, apperrors.ErrMissingTenantSignal)
	}

	var input struct {
		Role string `json:"role" form:"role"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Format de requete invalide",
		})
	}

	repos := repository.GetGlobalRepositories()
	user, err := repos.User.GetByID(c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Utilisateur introuvable",
			})
		}
		return respondError(c, err)
	}
	if user.TenantID != tenant.ID {
		// Cross-tenant access never discloses existence.
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Utilisateur introuvable",
		})
	}

	role := strings.ToLower(strings.TrimSpace(input.Role))
	user.Role = role
	user.Permissions = models.DefaultPermissions(role)
	if err := user.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}
	if err := repos.User.Update(user); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "user": user})
}

// HandleDeleteUser removes a directory user. Independent of whatever
// academic record spawned it.
func HandleDeleteUser(c *fiber.Ctx) error {
	tenant := tenantcontext.GetTenant(c)
	if tenant == nil {
		return respondError(c, apperrors.ErrMissingTenantSignal)
	}

	repos := repository.GetGlobalRepositories()
	user, err := repos.User.GetByID(c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Utilisateur introuvable",
			})
		}
		return respondError(c, err)
	}
	if user.TenantID != tenant.ID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Utilisateur introuvable",
		})
	}

	if err := repos.User.Delete(user.ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func ceilingError(c *fiber.Ctx, err error) error {
	if errors.Is(err, plans.ErrStudentLimitReached) || errors.Is(err, plans.ErrTeacherLimitReached) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "Plafond du plan atteint pour ce type de compte",
		})
	}
	return respondError(c, err)
}
