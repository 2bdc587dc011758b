package roleplayValidator

import (
	"strings"

	"roleplay/controllers/roleplayController"
	"roleplay/middleware"

	"github.com/gofiber/fiber/v2"
)

const maxMessageLength = 4000

// Start validator middleware
func Start() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(roleplayController.StartRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.UserID == 0 {
			errors["user_id"] = "User id is required!"
		}
		if reqData.ScenarioID == 0 {
			errors["scenario_id"] = "Scenario id is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedStartRequest", reqData)
		return c.Next()
	}
}

// Chat validator middleware
func Chat() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(roleplayController.ChatRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.SessionToken) == "" {
			errors["session_token"] = "Session token is required!"
		}
		if strings.TrimSpace(reqData.Message) == "" {
			errors["message"] = "Message must not be empty!"
		}
		if len(reqData.Message) > maxMessageLength {
			errors["message"] = "Message is too long!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedChatRequest", reqData)
		return c.Next()
	}
}
