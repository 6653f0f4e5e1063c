package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/MamadouBacke/Scolaria/app/controllers"
	"github.com/MamadouBacke/Scolaria/app/repository"
	"github.com/MamadouBacke/Scolaria/internal/pkg/constants"
	"github.com/MamadouBacke/Scolaria/internal/pkg/middleware"
	"github.com/MamadouBacke/Scolaria/internal/pkg/ratelimit"
	"github.com/MamadouBacke/Scolaria/internal/pkg/tenantresolver"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	repos := repository.GetGlobalRepositories()
	lookup := tenantresolver.NewLookup(repos.Tenant)

	api := app.Group(constants.APIRoute, limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Scolaria API",
		})
	})

	v1 := api.Group(constants.V1Route)

	// Authentication: tenant identity travels in the login body itself,
	// so no guard here; only the attempt limiter.
	authGroup := v1.Group("/auth")
	authGroup.Post("/login", ratelimit.LoginLimiter(), controllers.HandleLogin)
	authGroup.Post("/reset-password", controllers.HandleResetPassword)

	// Platform-operator tooling: id-addressed, 404 semantics.
	tenants := v1.Group("/tenants")
	tenants.Post("/", controllers.HandleCreateTenant)
	tenants.Get("/", controllers.HandleListTenants)
	tenants.Get("/:id", controllers.HandleGetTenant)
	tenants.Patch("/:id/status", controllers.HandleUpdateTenantStatus)
	tenants.Post("/:id/plan/upgrade", controllers.HandleUpgradePlan)
	tenants.Post("/:id/plan/downgrade", controllers.HandleDowngradePlan)
	tenants.Post("/:id/plan/renew", controllers.HandleRenewPlan)
	tenants.Post("/:id/plan/cancel", controllers.HandleCancelPlan)

	customPlans := v1.Group("/custom-plans")
	customPlans.Post("/", controllers.HandleCreateCustomPlan)
	customPlans.Get("/", controllers.HandleListCustomPlans)
	customPlans.Delete("/:id", controllers.HandleDeleteCustomPlan)

	// Tenant-scoped surface: every request passes the guard, which
	// resolves the tenant from the ambient signals and attaches it to
	// the request context.
	scoped := v1.Group("/school", middleware.TenantGuard(lookup))
	scoped.Get("/limits", controllers.HandleGetTenantLimits)
	scoped.Post("/users", controllers.HandleCreateUser)
	scoped.Get("/users", controllers.HandleListUsers)
	scoped.Patch("/users/:id/role", controllers.HandleUpdateUserRole)
	scoped.Delete("/users/:id", controllers.HandleDeleteUser)

	// Narrow contract for CRUD collaborators that already know their
	// tenant id.
	direct := v1.Group("/scoped", middleware.RequireTenantID(repos.Tenant))
	direct.Get("/limits", controllers.HandleGetTenantLimits)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
