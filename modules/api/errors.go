package api

import (
	"log"

	"github.com/example/task-approval/domain/apperr"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps an error kind to its HTTP status and error code.
func statusFor(kind apperr.Kind) (int, string) {
	switch kind {
	case apperr.KindValidation:
		return fiber.StatusBadRequest, "validation_error"
	case apperr.KindPermission:
		return fiber.StatusForbidden, "forbidden"
	case apperr.KindNotFound:
		return fiber.StatusNotFound, "not_found"
	case apperr.KindPrecondition:
		return fiber.StatusConflict, "precondition_failed"
	case apperr.KindConflict:
		return fiber.StatusConflict, "conflict"
	default:
		return fiber.StatusInternalServerError, "server_error"
	}
}

// writeError renders err as an ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	status, code := statusFor(kind)
	if kind == apperr.KindInternal {
		log.Printf("[api] %s %s failed: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(ErrorResponse{
		Error:   code,
		Message: apperr.MessageOf(err),
	})
}

// writeAuthError renders credential failures as 401.
func writeAuthError(c *fiber.Ctx, err error) error {
	if apperr.KindOf(err) == apperr.KindPermission {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: apperr.MessageOf(err),
		})
	}
	return writeError(c, err)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
