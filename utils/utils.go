package utils

import (
	"errors"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"

	"github.com/bomaolad/team-sync-be/models"
)

// Pointer returns a pointer to the given value
func Pointer[T any](v T) *T {
	return &v
}

// ErrorResponse creates a standardized error response
func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	response := fiber.Map{
		"success": false,
		"error":   message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	if status >= fiber.StatusInternalServerError && err != nil {
		sentry.CaptureException(err)
	}
	return c.Status(status).JSON(response)
}

// FailureResponse maps a service error onto its HTTP status. Controllers use
// this for every error coming out of the service layer so the taxonomy of
// models/errors.go is translated in exactly one place.
func FailureResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return ErrorResponse(c, fiber.StatusNotFound, "Not found", err)
	case errors.Is(err, models.ErrForbidden):
		return ErrorResponse(c, fiber.StatusForbidden, "Forbidden", err)
	case errors.Is(err, models.ErrConflict):
		return ErrorResponse(c, fiber.StatusConflict, "Conflict", err)
	case errors.Is(err, models.ErrInvalidTransition):
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid transition", err)
	}
	return ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error", err)
}

// SuccessResponse creates a standardized success response
func SuccessResponse(data interface{}) fiber.Map {
	return fiber.Map{
		"success": true,
		"data":    data,
	}
}

// ParseUint safely parses a string to uint
func ParseUint(s string) uint {
	i, _ := strconv.ParseUint(s, 10, 32)
	return uint(i)
}
