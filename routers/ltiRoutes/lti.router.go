package ltiRoutes

import (
	"roleplay/controllers/ltiController"

	"github.com/gofiber/fiber/v2"
)

func SetupLTIRoutes(app *fiber.App, ctl *ltiController.Controller) {
	ltiGroup := app.Group("/api/lti")

	ltiGroup.Post("/launch", ctl.Launch)
}
