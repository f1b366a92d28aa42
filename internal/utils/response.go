package utils

import "github.com/gofiber/fiber/v2"

func JSONError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": msg})
}

// RespondError translates a service error through the taxonomy.
func RespondError(c *fiber.Ctx, err error) error {
	return JSONError(c, StatusFromError(err), err.Error())
}
