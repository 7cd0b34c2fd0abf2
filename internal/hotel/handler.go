// Package hotel is the boundary for actual hotel/restaurant operations.
// Nothing here is implemented yet; the routes exist so the admin console has
// a stable surface to point at, and every one of them answers 501.
package hotel

import "github.com/gofiber/fiber/v2"

func NotImplementedHandler(feature string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{
			"success": false,
			"message": feature + " is not implemented yet",
		})
	}
}
