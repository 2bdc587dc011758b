package scenarioRoutes

import (
	"roleplay/controllers/scenarioController"
	"roleplay/middleware"
	scenarioValidator "roleplay/validators/scenario"

	"github.com/gofiber/fiber/v2"
)

func SetupScenarioRoutes(app *fiber.App, ctl *scenarioController.Controller) {
	scenarioGroup := app.Group("/api/scenarios")

	scenarioGroup.Get("/", ctl.List)
	scenarioGroup.Get("/:id", ctl.Get)

	adminGroup := app.Group("/api/admin/scenarios", middleware.RequireInstructor(ctl.DB))

	adminGroup.Post("/", scenarioValidator.Save(), ctl.Create)
	adminGroup.Put("/:id", scenarioValidator.Save(), ctl.Update)
	adminGroup.Patch("/:id/toggle", ctl.Toggle)
	adminGroup.Delete("/:id", ctl.Delete)
}
