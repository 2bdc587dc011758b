package middleware

import (
	"roleplay/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RequireInstructor resolves the acting user from the user_id query parameter
// and admits only launch-assigned instructors and admins. The resolved user is
// stored in Locals("adminUser") for downstream handlers.
func RequireInstructor(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.QueryInt("user_id")
		if userID <= 0 {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
		}
		if user.Role != models.RoleAdmin && user.Role != models.RoleInstructor {
			return JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Instructors only.", nil)
		}

		c.Locals("adminUser", &user)
		return c.Next()
	}
}
