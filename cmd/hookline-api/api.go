// Package main provides the Hookline API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/hooklinehq/hookline/pkg/persistence"
	"github.com/hooklinehq/hookline/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	validate    *validator.Validate
}

func NewAPI(logger *slog.Logger, persistence persistence.Persistence) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.persistence, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Hookline API")
	})

	t := app.Group("/triggers")
	t.Get("/", handlers.GetTriggers)
	t.Post("/", handlers.CreateTrigger)
	t.Get("/:id", handlers.GetTrigger)
	t.Patch("/:id", handlers.UpdateTrigger)
	t.Delete("/:id", handlers.DeleteTrigger)

	ac := app.Group("/actions")
	ac.Post("/", handlers.CreateAction)
	ac.Get("/:id", handlers.GetAction)
	ac.Put("/:id", handlers.UpdateAction)
	ac.Delete("/:id", handlers.DeleteAction)

	au := app.Group("/automations")
	au.Post("/", handlers.CreateAutomation)
	au.Get("/:id", handlers.GetAutomation)
	au.Delete("/:id", handlers.DeleteAutomation)

	app.Get("/executions/:id", handlers.GetExecution)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
