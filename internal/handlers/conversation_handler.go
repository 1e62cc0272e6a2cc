package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/repositories"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/services"
)

type ConversationHandler struct {
	conversations *services.ConversationService
	logs          repositories.MessageLogRepo
}

func NewConversationHandler(conversations *services.ConversationService, logs repositories.MessageLogRepo) *ConversationHandler {
	return &ConversationHandler{conversations: conversations, logs: logs}
}

// List godoc
// @Summary List WhatsApp conversations
// @Tags Conversations
// @Produce json
// @Param lead_id query string false "Filter by lead"
// @Param direction query string false "incoming or outgoing"
// @Param start_date query string false "RFC3339 lower bound"
// @Param end_date query string false "RFC3339 upper bound"
// @Param limit query int false "Max rows" default(100)
// @Success 200 {object} map[string]interface{}
// @Router /conversations [get]
func (h *ConversationHandler) List(c *fiber.Ctx) error {
	filter := repositories.ConversationFilter{
		PhoneNumber: c.Query("phone"),
		Direction:   c.Query("direction"),
		Intent:      c.Query("intent"),
		Limit:       c.QueryInt("limit", 100),
	}

	if raw := c.Query("lead_id"); raw != "" {
		leadID, err := uuid.Parse(raw)
		if err != nil {
			return SendError(c, "lead_id must be a valid UUID", fiber.StatusBadRequest)
		}
		filter.LeadID = &leadID
	}
	if raw := c.Query("start_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return SendError(c, "start_date must be RFC3339", fiber.StatusBadRequest)
		}
		filter.StartDate = &t
	}
	if raw := c.Query("end_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return SendError(c, "end_date must be RFC3339", fiber.StatusBadRequest)
		}
		filter.EndDate = &t
	}

	conversations, err := h.conversations.History(filter)
	if err != nil {
		return SendServiceError(c, err)
	}
	return SendSuccess(c, fiber.Map{"conversations": conversations, "count": len(conversations)})
}

// ListMessageLogs godoc
// @Summary List automated message logs
// @Tags Conversations
// @Produce json
// @Param lead_id query string false "Filter by lead"
// @Param status query string false "pending, sent or error"
// @Param limit query int false "Max rows" default(100)
// @Success 200 {object} map[string]interface{}
// @Router /messages [get]
func (h *ConversationHandler) ListMessageLogs(c *fiber.Ctx) error {
	filter := repositories.MessageLogFilter{
		Status: c.Query("status"),
		Limit:  c.QueryInt("limit", 100),
	}
	if raw := c.Query("lead_id"); raw != "" {
		leadID, err := uuid.Parse(raw)
		if err != nil {
			return SendError(c, "lead_id must be a valid UUID", fiber.StatusBadRequest)
		}
		filter.LeadID = &leadID
	}

	logs, err := h.logs.List(filter)
	if err != nil {
		return SendServiceError(c, err)
	}
	return SendSuccess(c, fiber.Map{"messages": logs, "count": len(logs)})
}
