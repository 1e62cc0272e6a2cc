package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/repositories"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/services"
)

type EventHandler struct {
	capture   *services.CaptureService
	processor *services.EventService
	events    repositories.LeadEventRepo
}

func NewEventHandler(capture *services.CaptureService, processor *services.EventService, events repositories.LeadEventRepo) *EventHandler {
	return &EventHandler{capture: capture, processor: processor, events: events}
}

// CaptureEvent godoc
// @Summary Capture a lead event
// @Description Capture an event and associate it with a lead by phone or email, then run template matching
// @Tags Events
// @Accept json
// @Produce json
// @Param data body services.CaptureEventInput true "Event data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /events [post]
func (h *EventHandler) CaptureEvent(c *fiber.Ctx) error {
	var input services.CaptureEventInput
	if err := c.BodyParser(&input); err != nil {
		return SendError(c, "invalid request body", fiber.StatusBadRequest)
	}

	result, err := h.capture.CaptureEvent(c.Context(), input)
	if err != nil {
		return SendServiceError(c, err)
	}
	return SendSuccess(c, fiber.Map{
		"message":  "Event captured successfully",
		"lead_id":  result.LeadID,
		"event_id": result.EventID,
	})
}

// ProcessEvent godoc
// @Summary Run template matching for a lead event
// @Description Match an already-recorded event against active templates and send eligible messages
// @Tags Events
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /events/process [post]
func (h *EventHandler) ProcessEvent(c *fiber.Ctx) error {
	var body struct {
		LeadID    string                 `json:"lead_id"`
		ProjectID string                 `json:"project_id"`
		EventType string                 `json:"event_type"`
		EventData map[string]interface{} `json:"event_data"`
	}
	if err := c.BodyParser(&body); err != nil {
		return SendError(c, "invalid request body", fiber.StatusBadRequest)
	}

	leadID, err := uuid.Parse(body.LeadID)
	if err != nil {
		return SendError(c, "lead_id must be a valid UUID", fiber.StatusBadRequest)
	}

	input := services.ProcessEventInput{
		LeadID:    leadID,
		EventType: body.EventType,
		EventData: body.EventData,
	}
	if body.ProjectID != "" {
		projectID, err := uuid.Parse(body.ProjectID)
		if err != nil {
			return SendError(c, "project_id must be a valid UUID", fiber.StatusBadRequest)
		}
		input.ProjectID = &projectID
	}

	result, err := h.processor.ProcessEvent(c.Context(), input)
	if err != nil {
		return SendServiceError(c, err)
	}
	return SendSuccess(c, result)
}

// ListLeadEvents godoc
// @Summary List a lead's events
// @Tags Events
// @Produce json
// @Param id path string true "Lead ID"
// @Param limit query int false "Max events to return" default(50)
// @Success 200 {object} map[string]interface{}
// @Router /leads/{id}/events [get]
func (h *EventHandler) ListLeadEvents(c *fiber.Ctx) error {
	leadID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return SendError(c, "lead id must be a valid UUID", fiber.StatusBadRequest)
	}
	limit := c.QueryInt("limit", 50)

	events, err := h.events.FindByLead(leadID, limit)
	if err != nil {
		return SendServiceError(c, err)
	}
	return SendSuccess(c, fiber.Map{"events": events, "count": len(events)})
}
