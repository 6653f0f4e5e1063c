package controllers

import (
	"errors"
	"log"
	"sync"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/MamadouBacke/Scolaria/app/repository"
	"github.com/MamadouBacke/Scolaria/internal/pkg/apperrors"
	"github.com/MamadouBacke/Scolaria/internal/pkg/auth"
	counter "github.com/MamadouBacke/Scolaria/internal/pkg/metrics/counter"
	"github.com/MamadouBacke/Scolaria/internal/pkg/password"
	"github.com/MamadouBacke/Scolaria/internal/pkg/tenantresolver"
)

var (
	authChain     *auth.Chain
	authChainOnce sync.Once
)

// getAuthChain lazily builds the authentication chain over the global
// repositories with the default candidate rules.
func getAuthChain() *auth.Chain {
	authChainOnce.Do(func() {
		repos := repository.GetGlobalRepositories()
		authChain = auth.NewChain(
			tenantresolver.NewLookup(repos.Tenant),
			repos.Tenant,
			repos.User,
			nil,
		)
	})
	return authChain
}

// HandleLogin authenticates {domain, username, password} through the
// dual-mode chain. On legacy-path success the response carries the
// tenant; on directory-path success it carries the user; never both.
// No token is issued: the caller persists the returned object
// client-side.
func HandleLogin(c *fiber.Ctx) error {
	var input struct {
		Domain   string `json:"domain" form:"domain"`
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Format de requete invalide",
		})
	}

	principal, err := getAuthChain().Authenticate(input.Domain, input.Username, input.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": apperrors.InvalidCredentialsMessage,
			})
		}
		return respondError(c, err)
	}

	if principal.Kind == auth.PrincipalLegacyAdmin {
		if err := counter.AddTenantLogin(principal.Tenant.ID); err != nil {
			log.Printf("[Auth] login counter error: %v", err)
		}
		return c.JSON(fiber.Map{
			"success": true,
			"tenant":  principal.Tenant,
		})
	}
	if err := counter.AddUserLogin(principal.User.ID); err != nil {
		log.Printf("[Auth] login counter error: %v", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"user":    principal.User,
	})
}

// HandleResetPassword resets a credential by email: the embedded tenant
// admin first, then the directory. When no new password is supplied one
// is generated and disclosed exactly once, in this response.
func HandleResetPassword(c *fiber.Ctx) error {
	var input struct {
		Email       string `json:"email" form:"email"`
		NewPassword string `json:"new_password" form:"new_password"`
	}
	if err := c.BodyParser(&input); err != nil || input.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Format de requete invalide",
		})
	}

	generated := ""
	plaintext := input.NewPassword
	if plaintext == "" {
		var err error
		plaintext, err = password.Generate()
		if err != nil {
			return respondError(c, err)
		}
		generated = plaintext
	}
	hash, err := password.Hash(plaintext)
	if err != nil {
		return respondError(c, err)
	}

	repos := repository.GetGlobalRepositories()

	// Legacy admin record first, then the directory.
	if tenant, err := repos.Tenant.GetByAdminEmail(input.Email); err == nil {
		if err := repos.Tenant.UpdateAdminPassword(tenant.ID, hash); err != nil {
			return respondError(c, err)
		}
		return resetResponse(c, generated)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, err)
	}

	user, err := repos.User.GetByEmail(input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Aucun compte pour cet email",
			})
		}
		return respondError(c, err)
	}
	if err := repos.User.UpdatePassword(user.ID, hash); err != nil {
		return respondError(c, err)
	}
	return resetResponse(c, generated)
}

func resetResponse(c *fiber.Ctx, generated string) error {
	resp := fiber.Map{
		"success": true,
		"message": "Mot de passe reinitialise",
	}
	if generated != "" {
		resp["password"] = generated
	}
	return c.JSON(resp)
}
