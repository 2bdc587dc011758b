package roleplayRoutes

import (
	"roleplay/controllers/roleplayController"
	roleplayValidator "roleplay/validators/roleplay"

	"github.com/gofiber/fiber/v2"
)

func SetupRoleplayRoutes(app *fiber.App, ctl *roleplayController.Controller) {
	roleplayGroup := app.Group("/api/roleplay")

	roleplayGroup.Post("/start", roleplayValidator.Start(), ctl.Start)
	roleplayGroup.Post("/chat", roleplayValidator.Chat(), ctl.Chat)
	roleplayGroup.Get("/session/:sessionToken", ctl.GetSession)
	roleplayGroup.Get("/messages/:sessionToken", ctl.GetMessages)
}
