package services

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Domain error sentinels. Services wrap these with context via fmt.Errorf("%w");
// RenderError maps them to a stable machine code plus an HTTP status, so handlers
// never hand-pick status codes for domain failures.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrConflict        = errors.New("conflict")
)

func errorCode(err error) (int, string) {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return fiber.StatusUnauthorized, "UNAUTHENTICATED"
	case errors.Is(err, ErrUnauthorized):
		return fiber.StatusForbidden, "UNAUTHORIZED"
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, ErrInvalidInput):
		return fiber.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	default:
		return fiber.StatusInternalServerError, "INTERNAL"
	}
}

// RenderError writes the JSON error body for a domain error.
func RenderError(c *fiber.Ctx, err error) error {
	status, code := errorCode(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		// Don't leak storage internals to callers.
		msg = "internal error"
	}
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
		"code":  code,
	})
}

// invalidf is shorthand for a wrapped ErrInvalidInput.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}
