package scenarioValidator

import (
	"strings"

	"roleplay/controllers/scenarioController"
	"roleplay/middleware"

	"github.com/gofiber/fiber/v2"
)

// Save validates the admin scenario create/update body.
func Save() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(scenarioController.ScenarioRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if len(strings.TrimSpace(reqData.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}
		if strings.TrimSpace(reqData.CharacterName) == "" {
			errors["character_name"] = "Character name is required!"
		}
		if len(reqData.Objectives) == 0 {
			errors["objectives"] = "At least one learning objective is required!"
		}
		for _, objective := range reqData.Objectives {
			if strings.TrimSpace(objective) == "" {
				errors["objectives"] = "Objectives must not be empty!"
				break
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedScenario", reqData)
		return c.Next()
	}
}
