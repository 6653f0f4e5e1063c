package controllers

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/MamadouBacke/Scolaria/internal/pkg/apperrors"
)

// respondError maps a core error to its JSON response. Unclassified
// errors are logged and surface as an opaque 500.
func respondError(c *fiber.Ctx, err error) error {
	status := apperrors.StatusCode(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("controller: unexpected error: %v", err)
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": apperrors.Message(err),
	})
}

// paginationParams reads offset/limit query parameters with sane caps.
func paginationParams(c *fiber.Ctx) (int, int) {
	offset, err := strconv.Atoi(c.Query("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return offset, limit
}
