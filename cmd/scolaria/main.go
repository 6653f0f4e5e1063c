package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/MamadouBacke/Scolaria/app/repository"
	"github.com/MamadouBacke/Scolaria/internal/pkg/cache"
	"github.com/MamadouBacke/Scolaria/internal/pkg/database"
	"github.com/MamadouBacke/Scolaria/internal/pkg/env"
	"github.com/MamadouBacke/Scolaria/internal/pkg/plans"
	"github.com/MamadouBacke/Scolaria/internal/pkg/router"
	"github.com/MamadouBacke/Scolaria/internal/pkg/worker"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	// background tasks: counter flushes and the plan-change sweep
	repos := repository.GetGlobalRepositories()
	planService := plans.NewService(repos.Tenant, repos.CustomPlan)
	worker.GetManager(planService).Start()

	// init fiber app
	app := fiber.New(fiber.Config{
		AppName: "Scolaria",
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "admin"),
		},
	}), monitor.New())

	// ROUTER
	router.InstallRouter(app)

	return app
}
