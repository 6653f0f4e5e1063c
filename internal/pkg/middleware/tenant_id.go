package middleware

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/MamadouBacke/Scolaria/app/repository"
	"github.com/MamadouBacke/Scolaria/internal/pkg/apperrors"
	"github.com/MamadouBacke/Scolaria/internal/pkg/tenantcontext"
)

// HeaderTenantID carries the resolved tenant's internal id directly.
const HeaderTenantID = "X-Tenant-Id"

// RequireTenantID is the narrow contract for the CRUD modules: once a
// caller already knows its tenant, it passes the internal id in
// X-Tenant-Id instead of going through domain resolution. Missing or
// unknown ids are client errors.
func RequireTenantID(tenants repository.TenantRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(HeaderTenantID))
		if id == "" {
			return reject(c, apperrors.ErrMissingTenantSignal)
		}

		tenant, err := tenants.GetByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return reject(c, apperrors.ErrTenantNotFound)
			}
			log.Printf("tenant id middleware: lookup failed: %v", err)
			return reject(c, err)
		}
		if !tenant.IsActive() {
			return reject(c, apperrors.ErrTenantInactive)
		}

		tenantcontext.Set(c, tenant, id)
		return c.Next()
	}
}
