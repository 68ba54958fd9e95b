package middleware

import (
	"errors"
	"log"

	"coursehub/services/apperr"

	"github.com/gofiber/fiber/v2"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// StatusFor maps a service error kind to an HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.NotFound:
		return fiber.StatusNotFound
	case apperr.InvalidInput:
		return fiber.StatusBadRequest
	case apperr.AlreadySubmitted:
		return fiber.StatusConflict
	case apperr.IncompleteAnswers:
		return fiber.StatusUnprocessableEntity
	case apperr.Unauthorized:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorResponse writes err in the standard envelope. Storage failures are
// logged and reported with a generic message; the kind goes in data.
func ErrorResponse(c *fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	status := StatusFor(kind)

	message := "Something went wrong!"
	var ae *apperr.Error
	if kind != apperr.StorageFailure && errors.As(err, &ae) {
		message = ae.Message
	} else {
		log.Printf("[API] %s %s failed: %v", c.Method(), c.Path(), err)
	}
	return JsonResponse(c, status, false, message, fiber.Map{"code": kind})
}
