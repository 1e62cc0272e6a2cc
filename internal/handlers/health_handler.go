package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/core/ai"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/core/whatsapp"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/database"
)

type HealthHandler struct {
	db      *database.DB
	gateway *whatsapp.GatewayClient
	ai      *ai.ServiceProvider
}

func NewHealthHandler(db *database.DB, gateway *whatsapp.GatewayClient, aiProvider *ai.ServiceProvider) *HealthHandler {
	return &HealthHandler{db: db, gateway: gateway, ai: aiProvider}
}

// Health godoc
// @Summary Service health
// @Description Liveness plus dependency status for the database, WhatsApp gateway and AI service
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	deps := fiber.Map{}

	dbStatus := "ok"
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			dbStatus = "down"
		}
	}
	deps["database"] = dbStatus

	if h.gateway != nil {
		deps["whatsapp"] = h.gateway.Status(c.Context()).Status
	}

	if h.ai != nil {
		aiStatus := "ok"
		if err := h.ai.Health(c.Context()); err != nil {
			aiStatus = "down"
		}
		deps["ai_service"] = aiStatus
	}

	return SendSuccess(c, fiber.Map{
		"status":       "ok",
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"dependencies": deps,
	})
}
