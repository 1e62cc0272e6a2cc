package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/core/whatsapp"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/models"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/repositories"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/shared/utils"
)

// WebhookService turns gateway webhook events into conversation rows,
// lead events, chatbot replies and template matching runs. Webhook
// handling is lossy by design: events that cannot be matched to a lead
// are logged and dropped, never retried.
type WebhookService struct {
	leads         repositories.LeadRepo
	events        repositories.LeadEventRepo
	conversations *ConversationService
	chatbot       *ChatbotService
	processor     *EventService
	dispatcher    *DispatchService
}

func NewWebhookService(
	leads repositories.LeadRepo,
	events repositories.LeadEventRepo,
	conversations *ConversationService,
	chatbot *ChatbotService,
	processor *EventService,
	dispatcher *DispatchService,
) *WebhookService {
	return &WebhookService{
		leads:         leads,
		events:        events,
		conversations: conversations,
		chatbot:       chatbot,
		processor:     processor,
		dispatcher:    dispatcher,
	}
}

// HandleEvent processes one webhook delivery. It always succeeds from
// the gateway's point of view; internal problems are logged.
func (s *WebhookService) HandleEvent(ctx context.Context, event whatsapp.WebhookEvent) {
	switch event.Type {
	case whatsapp.EventTypeMessage:
		s.handleMessage(ctx, event.Data)
	case whatsapp.EventTypeQR:
		utils.LogInfo("QR code event received", nil)
	case whatsapp.EventTypeConnection:
		utils.LogInfo("Connection event received", map[string]interface{}{"state": event.Data.State})
	default:
		utils.LogInfo("Unhandled webhook event type", map[string]interface{}{"type": event.Type})
	}
}

func (s *WebhookService) handleMessage(ctx context.Context, data whatsapp.WebhookData) {
	if data.From == "" {
		utils.LogWarn("Webhook message missing sender, ignored", nil)
		return
	}

	phone := data.From
	if data.FromMe && data.To != "" {
		phone = data.To
	}

	lead := s.findLead(phone)
	if lead == nil {
		utils.LogInfo("No lead found for webhook message", map[string]interface{}{
			"phone": whatsapp.NormalizePhone(phone),
		})
		return
	}

	direction := models.DirectionIncoming
	if data.FromMe {
		direction = models.DirectionOutgoing
	}
	timestamp := parseTimestamp(data.Timestamp)

	conversation, err := s.conversations.RecordMessage(RecordMessageInput{
		LeadID:           lead.ID,
		MessageID:        data.ID,
		PhoneNumber:      phone,
		Direction:        direction,
		Content:          data.Body,
		MediaType:        mediaType(data),
		MessageTimestamp: timestamp,
	})
	if err != nil {
		utils.LogError("Failed to record webhook message", err, map[string]interface{}{
			"lead_id": lead.ID.String(),
		})
		return
	}
	if conversation == nil {
		// Duplicate delivery, already handled.
		return
	}

	s.recordLeadEvent(lead.ID, direction, data.Body, data.ID, timestamp)

	if direction == models.DirectionOutgoing {
		if _, err := s.conversations.CalculateResponseTime(lead.ID, data.ID, timestamp); err != nil {
			utils.LogError("Failed to calculate response time", err, nil)
		}
		return
	}

	s.maybeAutoReply(ctx, conversation, lead, data.Body)

	if s.processor != nil {
		if _, err := s.processor.ProcessEvent(ctx, ProcessEventInput{
			LeadID:    lead.ID,
			EventType: models.EventTypeWhatsAppMessage,
			EventData: map[string]interface{}{
				"direction": direction,
				"message":   data.Body,
				"messageId": data.ID,
			},
		}); err != nil {
			utils.LogError("Template matching failed for webhook message", err, map[string]interface{}{
				"lead_id": lead.ID.String(),
			})
		}
	}
}

func (s *WebhookService) maybeAutoReply(ctx context.Context, conversation *models.WhatsAppConversation, lead *models.Lead, body string) {
	if s.chatbot == nil || body == "" {
		return
	}

	response := s.chatbot.ProcessMessage(body, lead.ID)
	s.chatbot.SaveAnalysis(conversation.ID, response.Analysis)

	if !response.ShouldRespond || response.Message == "" || s.dispatcher == nil {
		return
	}
	if lead.DoNotContact {
		return
	}

	leadID := lead.ID
	if _, err := s.dispatcher.SendManual(ctx, lead.Phone, response.Message, &leadID); err != nil {
		utils.LogError("Chatbot auto-reply failed", err, map[string]interface{}{
			"lead_id": lead.ID.String(),
		})
	}
}

func (s *WebhookService) findLead(phone string) *models.Lead {
	formats, err := whatsapp.SearchFormats(phone)
	if err != nil {
		return nil
	}
	likeFormats := make([]string, len(formats))
	for i, f := range formats {
		likeFormats[i] = "%" + f + "%"
	}
	lead, err := s.leads.FindByPhoneFormats(likeFormats)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.LogError("Lead lookup by phone failed", err, nil)
		}
		return nil
	}
	return lead
}

func (s *WebhookService) recordLeadEvent(leadID uuid.UUID, direction, body, messageID string, timestamp time.Time) {
	eventData, _ := json.Marshal(map[string]interface{}{
		"direction": direction,
		"message":   body,
		"messageId": messageID,
		"timestamp": timestamp.Format(time.RFC3339),
	})

	if err := s.events.Create(&models.LeadEvent{
		LeadID:    leadID,
		EventType: models.EventTypeWhatsAppMessage,
		EventData: eventData,
		Origin:    "whatsapp",
	}); err != nil {
		utils.LogError("Failed to record webhook lead event", err, map[string]interface{}{
			"lead_id": leadID.String(),
		})
	}
}

func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Now().UTC()
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC()
	}
	return time.Now().UTC()
}

func mediaType(data whatsapp.WebhookData) string {
	if !data.HasMedia {
		return ""
	}
	if data.Type != "" {
		return data.Type
	}
	return "media"
}
