package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/services"
)

type InactivityHandler struct {
	scanner *services.InactivityService
}

func NewInactivityHandler(scanner *services.InactivityService) *InactivityHandler {
	return &InactivityHandler{scanner: scanner}
}

// Scan godoc
// @Summary Run the inactivity scan now
// @Description Scans contactable leads and sends tiered re-engagement messages. Also runs on the configured cron schedule.
// @Tags Inactivity
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /inactivity/scan [post]
func (h *InactivityHandler) Scan(c *fiber.Ctx) error {
	result, err := h.scanner.Scan(c.Context())
	if err != nil {
		return SendServiceError(c, err)
	}
	return SendSuccess(c, result)
}
