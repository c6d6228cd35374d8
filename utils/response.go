// utils/response.go
package utils

import "github.com/gofiber/fiber/v2"

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func Success(c *fiber.Ctx, data interface{}) error {
	return c.JSON(APIResponse{Success: true, Data: data})
}

func Message(c *fiber.Ctx, msg string) error {
	return c.JSON(APIResponse{Success: true, Message: msg})
}

func Error(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(APIResponse{Success: false, Error: msg})
}
