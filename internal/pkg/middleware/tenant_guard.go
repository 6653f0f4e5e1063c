package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/MamadouBacke/Scolaria/internal/pkg/apperrors"
	"github.com/MamadouBacke/Scolaria/internal/pkg/tenantcontext"
	"github.com/MamadouBacke/Scolaria/internal/pkg/tenantresolver"
)

// TenantGuard is the composition point of the tenancy core: it runs the
// domain resolver and the tenant lookup on every scoped request,
// rejects on failure with the coarse external error taxonomy, and
// attaches the resolved tenant to the request context for downstream
// handlers.
func TenantGuard(lookup *tenantresolver.Lookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier, err := tenantresolver.FromRequest(c)
		if err != nil {
			return reject(c, err)
		}

		tenant, ref, err := lookup.Resolve(identifier)
		if err != nil {
			return reject(c, err)
		}

		tenantcontext.Set(c, tenant, ref.Value)
		return c.Next()
	}
}

// reject maps a core error to its JSON response. Unclassified errors
// are logged and surface as an opaque 500.
func reject(c *fiber.Ctx, err error) error {
	status := apperrors.StatusCode(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("tenant guard: unexpected error: %v", err)
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": apperrors.Message(err),
	})
}
