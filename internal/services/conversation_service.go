package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/core/whatsapp"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/models"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/repositories"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/shared/apperrors"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/shared/utils"
)

// RecordMessageInput is one chat turn to persist.
type RecordMessageInput struct {
	LeadID           uuid.UUID
	MessageID        string
	PhoneNumber      string
	Direction        string
	Content          string
	MediaType        string
	MessageStatus    string
	MessageTimestamp time.Time
}

// ConversationService owns the WhatsApp conversation history: recording
// turns, deduplicating webhook redeliveries and computing response
// times.
type ConversationService struct {
	conversations repositories.ConversationRepo
}

func NewConversationService(conversations repositories.ConversationRepo) *ConversationService {
	return &ConversationService{conversations: conversations}
}

// RecordMessage stores one turn. A turn already recorded under the same
// (lead, message id) pair is ignored and returns nil without error.
func (s *ConversationService) RecordMessage(input RecordMessageInput) (*models.WhatsAppConversation, error) {
	if input.LeadID == uuid.Nil || input.MessageID == "" {
		return nil, apperrors.Validation("lead ID and message ID are required")
	}
	if input.Direction != models.DirectionIncoming && input.Direction != models.DirectionOutgoing {
		return nil, apperrors.Validation(fmt.Sprintf("invalid direction %q", input.Direction))
	}

	exists, err := s.conversations.Exists(input.LeadID, input.MessageID)
	if err != nil {
		return nil, err
	}
	if exists {
		utils.LogInfo("Duplicate message ignored", map[string]interface{}{
			"lead_id":    input.LeadID.String(),
			"message_id": input.MessageID,
		})
		return nil, nil
	}

	timestamp := input.MessageTimestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	conversation := &models.WhatsAppConversation{
		LeadID:           input.LeadID,
		MessageID:        input.MessageID,
		PhoneNumber:      whatsapp.NormalizePhone(input.PhoneNumber),
		Direction:        input.Direction,
		Content:          input.Content,
		MediaType:        input.MediaType,
		MessageStatus:    input.MessageStatus,
		MessageTimestamp: timestamp,
	}
	if err := s.conversations.Create(conversation); err != nil {
		return nil, fmt.Errorf("failed to record conversation: %w", err)
	}
	return conversation, nil
}

// CalculateResponseTime measures how long an outgoing message took to
// answer the lead's last incoming message and stores it on the outgoing
// row. Returns nil when there is no prior incoming message.
func (s *ConversationService) CalculateResponseTime(leadID uuid.UUID, messageID string, messageTimestamp time.Time) (*int, error) {
	previous, err := s.conversations.LastIncomingBefore(leadID, messageTimestamp)
	if err != nil {
		return nil, err
	}
	if previous == nil {
		return nil, nil
	}

	seconds := int(messageTimestamp.Sub(previous.MessageTimestamp).Seconds())
	if err := s.conversations.SetResponseTime(leadID, messageID, seconds); err != nil {
		utils.LogError("Failed to store response time", err, map[string]interface{}{
			"lead_id":    leadID.String(),
			"message_id": messageID,
		})
	}
	return &seconds, nil
}

// History lists conversations matching a filter, newest first.
func (s *ConversationService) History(filter repositories.ConversationFilter) ([]models.WhatsAppConversation, error) {
	return s.conversations.List(filter)
}
