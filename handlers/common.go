// handlers/common.go - shared response helpers
package handlers

import (
	"errors"
	"log"
	"strconv"

	"bowlingmanager/services"

	"github.com/gofiber/fiber/v2"
)

// errorStatus picks the HTTP status and client-facing message for a
// service error. Validation errors keep their message; anything
// unrecognized is an internal error and gets masked.
func errorStatus(err error) (int, string) {
	var input services.InputError
	switch {
	case errors.As(err, &input):
		return 400, input.Error()
	case errors.Is(err, services.ErrInvalidScore):
		return 400, err.Error()
	case errors.Is(err, services.ErrUnauthorized):
		return 403, err.Error()
	case errors.Is(err, services.ErrUnknownTarget):
		return 404, err.Error()
	case errors.Is(err, services.ErrQuotaExceeded):
		return 429, err.Error()
	case errors.Is(err, services.ErrDuplicate):
		return 409, err.Error()
	}
	return 500, "Internal server error"
}

// fail maps service errors onto HTTP statuses with the standard envelope.
func fail(c *fiber.Ctx, err error) error {
	status, msg := errorStatus(err)
	if status == 500 {
		log.Printf("internal error on %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(400).JSON(fiber.Map{"success": false, "error": msg})
}

func ok(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

// paramUint parses a numeric path parameter.
func paramUint(c *fiber.Ctx, name string) (uint, error) {
	n, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, fiber.NewError(400, "invalid "+name)
	}
	return uint(n), nil
}
