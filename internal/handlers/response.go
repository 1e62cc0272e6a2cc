package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/shared/apperrors"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/shared/utils"
)

// SendSuccess writes the standard success envelope.
func SendSuccess(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":    true,
		"data":       data,
		"statusCode": fiber.StatusOK,
	})
}

// SendError writes the standard error envelope.
func SendError(c *fiber.Ctx, message string, status int) error {
	return c.Status(status).JSON(fiber.Map{
		"success":    false,
		"error":      message,
		"statusCode": status,
	})
}

// SendServiceError maps a service error to its HTTP status: validation
// errors are 400, missing records 404, upstream failures 502 and
// everything else 500.
func SendServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return SendError(c, err.Error(), fiber.StatusBadRequest)
	case errors.Is(err, apperrors.ErrNotFound):
		return SendError(c, err.Error(), fiber.StatusNotFound)
	}

	var upstream *apperrors.UpstreamError
	if errors.As(err, &upstream) {
		utils.LogError("Upstream dependency failed", err, map[string]interface{}{
			"service": upstream.Service,
		})
		return SendError(c, err.Error(), fiber.StatusBadGateway)
	}

	utils.LogError("Unhandled request error", err, nil)
	return SendError(c, "internal server error", fiber.StatusInternalServerError)
}
