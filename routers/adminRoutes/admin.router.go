package adminRoutes

import (
	"roleplay/controllers/adminController"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App, ctl *adminController.Controller) {
	adminGroup := app.Group("/api/admin")

	adminGroup.Get("/dashboard", ctl.Dashboard)
	adminGroup.Get("/sessions", ctl.Sessions)
	adminGroup.Get("/sessions/:sessionToken", ctl.SessionDetail)
	adminGroup.Post("/sessions/:sessionToken/abandon", ctl.AbandonSession)
}
