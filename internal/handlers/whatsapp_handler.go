package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/core/whatsapp"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/services"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/shared/utils"
)

type WhatsAppHandler struct {
	gateway    *whatsapp.GatewayClient
	dispatcher *services.DispatchService
	webhooks   *services.WebhookService
}

func NewWhatsAppHandler(gateway *whatsapp.GatewayClient, dispatcher *services.DispatchService, webhooks *services.WebhookService) *WhatsAppHandler {
	return &WhatsAppHandler{gateway: gateway, dispatcher: dispatcher, webhooks: webhooks}
}

// Status godoc
// @Summary Get WhatsApp connection status
// @Tags WhatsApp
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /whatsapp/status [get]
func (h *WhatsAppHandler) Status(c *fiber.Ctx) error {
	return SendSuccess(c, h.gateway.Status(c.Context()))
}

// Connect godoc
// @Summary Open a WhatsApp gateway session
// @Tags WhatsApp
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /whatsapp/connect [post]
func (h *WhatsAppHandler) Connect(c *fiber.Ctx) error {
	result, err := h.gateway.Connect(c.Context())
	if err != nil {
		return SendServiceError(c, err)
	}
	return SendSuccess(c, result)
}

// Disconnect godoc
// @Summary Close the WhatsApp gateway session
// @Tags WhatsApp
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /whatsapp/disconnect [post]
func (h *WhatsAppHandler) Disconnect(c *fiber.Ctx) error {
	result, err := h.gateway.Disconnect(c.Context())
	if err != nil {
		return SendServiceError(c, err)
	}
	return SendSuccess(c, result)
}

// QRCode godoc
// @Summary Get the WhatsApp pairing QR code
// @Description Returns the pairing code rendered as a PNG. Use ?plain=1 for the raw code string.
// @Tags WhatsApp
// @Produce image/png
// @Success 200 {file} image/png
// @Failure 404 {object} map[string]interface{}
// @Router /whatsapp/qrcode [get]
func (h *WhatsAppHandler) QRCode(c *fiber.Ctx) error {
	code, err := h.gateway.QRCode(c.Context())
	if err != nil {
		return SendServiceError(c, err)
	}

	if c.QueryBool("plain") {
		return SendSuccess(c, fiber.Map{"qrcode": code})
	}

	png, err := qrcode.Encode(code, qrcode.Medium, 256)
	if err != nil {
		return SendServiceError(c, err)
	}
	c.Set("Content-Type", "image/png")
	c.Set("Content-Disposition", "inline; filename=whatsapp-qr.png")
	return c.Send(png)
}

// SendMessage godoc
// @Summary Send a WhatsApp message
// @Description Send a text message to a phone number, recording the conversation when a lead matches
// @Tags WhatsApp
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /whatsapp/send [post]
func (h *WhatsAppHandler) SendMessage(c *fiber.Ctx) error {
	var body struct {
		Number  string `json:"number"`
		Message string `json:"message"`
		LeadID  string `json:"lead_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return SendError(c, "invalid request body", fiber.StatusBadRequest)
	}

	var leadID *uuid.UUID
	if body.LeadID != "" {
		parsed, err := uuid.Parse(body.LeadID)
		if err != nil {
			return SendError(c, "lead_id must be a valid UUID", fiber.StatusBadRequest)
		}
		leadID = &parsed
	}

	result, err := h.dispatcher.SendManual(c.Context(), body.Number, body.Message, leadID)
	if err != nil {
		return SendServiceError(c, err)
	}
	return SendSuccess(c, result)
}

// Webhook godoc
// @Summary Receive WhatsApp gateway webhook events
// @Description Accepts message, qr and connection events. Always acknowledges; processing is internal.
// @Tags WhatsApp
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /whatsapp/webhook [post]
func (h *WhatsAppHandler) Webhook(c *fiber.Ctx) error {
	var event whatsapp.WebhookEvent
	if err := c.BodyParser(&event); err != nil {
		utils.LogWarn("Malformed webhook payload", map[string]interface{}{"error": err.Error()})
		return SendSuccess(c, fiber.Map{"received": false})
	}

	if event.Type != "" {
		h.webhooks.HandleEvent(c.Context(), event)
	}
	return SendSuccess(c, fiber.Map{"received": true})
}
