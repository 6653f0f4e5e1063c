package tenantcontext

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MamadouBacke/Scolaria/app/models"
)

// Set attaches the resolved tenant and the original matched identifier
// to the request. Called by the request guard only; handlers must treat
// these values as the sole source of tenant scoping and never re-derive
// tenant identity on their own.
func Set(c *fiber.Ctx, tenant *models.Tenant, matched string) {
	c.Locals(KeyTenant, tenant)
	c.Locals(KeyTenantID, tenant.ID)
	c.Locals(KeyTenantDomain, tenant.Domain)
	c.Locals(KeyMatchedSignal, matched)
}

// GetTenant retrieves the resolved tenant from the request context.
// Returns nil when no guard ran on this route.
func GetTenant(c *fiber.Ctx) *models.Tenant {
	if t, ok := c.Locals(KeyTenant).(*models.Tenant); ok {
		return t
	}
	return nil
}

// GetTenantID returns the resolved tenant's internal id, or "".
func GetTenantID(c *fiber.Ctx) string {
	if id, ok := c.Locals(KeyTenantID).(string); ok {
		return id
	}
	return ""
}

// GetMatchedSignal returns the identifier string the resolver matched.
func GetMatchedSignal(c *fiber.Ctx) string {
	if s, ok := c.Locals(KeyMatchedSignal).(string); ok {
		return s
	}
	return ""
}
