// Package response writes JSON error bodies for Fiber handlers.
package response

import (
	"errors"
	"strings"

	apperrors "backoffice/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
)

// Body is the error payload every endpoint returns.
type Body struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error writes err with the status of its AppError, or 500.
func Error(c *fiber.Ctx, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		body := Body{
			Error:   strings.ToLower(string(appErr.Type)),
			Message: appErr.Message,
			Code:    appErr.Code,
		}
		if len(appErr.Details) > 0 {
			body.Details = appErr.Details
		}
		return c.Status(apperrors.HTTPStatus(appErr)).JSON(body)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(Body{Error: "http_error", Message: fiberErr.Message})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(Body{
		Error:   "internal_error",
		Message: "Internal Server Error",
	})
}

// BadRequest writes a 400 with the given error slug.
func BadRequest(c *fiber.Ctx, slug, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(Body{Error: slug, Message: message, Code: "INVALID_ARGUMENT"})
}
