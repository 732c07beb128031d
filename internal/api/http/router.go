package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intranet-directory/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Org       *handlers.OrgHandler
	Directory *handlers.DirectoryHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	api := app.Group("/api")

	org := api.Group("/org")
	org.Get("/structure", cfg.Org.Structure)
	org.Post("/rebuild", cfg.Org.Rebuild)
	org.Get("/from-employees", cfg.Org.Preview)

	directory := api.Group("/directory")
	directory.Get("/", cfg.Directory.List)
	directory.Post("/", cfg.Directory.Create)
	directory.Post("/import", cfg.Directory.Import)
	directory.Get("/by-name/:name", cfg.Directory.GetByName)
	directory.Put("/by-name/:name", cfg.Directory.UpdateSkillsByName)
	directory.Get("/by-email/:email", cfg.Directory.GetByEmail)
	directory.Put("/by-email/:email", cfg.Directory.UpdateSkillsByEmail)
	directory.Get("/:id", cfg.Directory.Get)
	directory.Put("/:id", cfg.Directory.Update)
	directory.Delete("/:id", cfg.Directory.Delete)
}
