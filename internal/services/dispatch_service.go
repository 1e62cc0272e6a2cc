package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/core/whatsapp"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/models"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/repositories"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/shared/apperrors"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/shared/utils"
)

// Sender delivers one text message to a phone number.
type Sender interface {
	Send(ctx context.Context, number, message string) (*whatsapp.SendResult, error)
}

// SendOutcome is what callers of the dispatcher always receive, whether
// or not the gateway accepted the message. Auto-reply flows depend on a
// message id coming back even when every endpoint is down.
type SendOutcome struct {
	MessageID string `json:"messageId"`
	Delivered bool   `json:"delivered"`
	Note      string `json:"note,omitempty"`
}

// DispatchService pushes generated messages through the WhatsApp
// gateway and records the outcome. Delivery is best-effort: a failed
// send degrades the log entry but never propagates an error into the
// generation pipeline.
type DispatchService struct {
	sender        Sender
	logs          repositories.MessageLogRepo
	events        repositories.LeadEventRepo
	conversations repositories.ConversationRepo
	leads         repositories.LeadRepo
}

func NewDispatchService(
	sender Sender,
	logs repositories.MessageLogRepo,
	events repositories.LeadEventRepo,
	conversations repositories.ConversationRepo,
	leads repositories.LeadRepo,
) *DispatchService {
	return &DispatchService{
		sender:        sender,
		logs:          logs,
		events:        events,
		conversations: conversations,
		leads:         leads,
	}
}

// Dispatch sends one pending automated message to its lead. On success
// the log flips to sent and the outbound message is mirrored into the
// event log and conversation history. On failure the log flips to error
// and the pipeline moves on.
func (d *DispatchService) Dispatch(ctx context.Context, logEntry *models.AutomatedMessageLog, lead *models.Lead) {
	if lead.Phone == "" {
		utils.LogWarn("Lead has no phone, message not dispatched", map[string]interface{}{
			"lead_id": lead.ID.String(),
			"log_id":  logEntry.ID.String(),
		})
		d.markError(logEntry.ID)
		return
	}

	now := time.Now().UTC()
	result, err := d.sender.Send(ctx, lead.Phone, logEntry.MessageContent)
	if err != nil {
		utils.LogError("WhatsApp dispatch failed", err, map[string]interface{}{
			"lead_id": lead.ID.String(),
			"log_id":  logEntry.ID.String(),
		})
		d.markError(logEntry.ID)
		d.recordOutbound(lead.ID, lead.Phone, "local-"+logEntry.ID.String(), logEntry.MessageContent, now, models.MessageStatusError)
		return
	}

	if err := d.logs.UpdateStatus(logEntry.ID, models.MessageStatusSent, &now); err != nil {
		utils.LogError("Failed to mark message as sent", err, nil)
	}

	messageID := result.MessageID
	if messageID == "" {
		// The gateway accepted the message without an id; synthesize a
		// local one so conversation dedup still works.
		messageID = "local-" + logEntry.ID.String()
	}

	d.recordOutbound(lead.ID, lead.Phone, messageID, logEntry.MessageContent, now, models.MessageStatusSent)
}

// SendManual delivers an operator-initiated message. When leadID is nil
// the lead is resolved from the phone number so the conversation still
// lands in the right history. Delivery failure is not an error: the
// outcome carries delivered=false and a synthesized local message id.
func (d *DispatchService) SendManual(ctx context.Context, number, message string, leadID *uuid.UUID) (*SendOutcome, error) {
	if number == "" || message == "" {
		return nil, apperrors.Validation("phone number and message are required")
	}

	outcome := &SendOutcome{Delivered: true}
	status := models.MessageStatusSent

	result, err := d.sender.Send(ctx, number, message)
	if err != nil {
		utils.LogError("WhatsApp send failed on every endpoint", err, map[string]interface{}{
			"number": whatsapp.NormalizePhone(number),
		})
		outcome.Delivered = false
		outcome.Note = "Mensagem salva localmente (gateway indisponível)"
		status = models.MessageStatusError
	} else {
		outcome.MessageID = result.MessageID
	}
	if outcome.MessageID == "" {
		outcome.MessageID = fmt.Sprintf("local-%s", uuid.New().String())
	}

	resolvedLead := leadID
	if resolvedLead == nil {
		if id := d.findLeadByPhone(number); id != nil {
			resolvedLead = id
		}
	}

	if resolvedLead != nil {
		d.recordOutbound(*resolvedLead, whatsapp.NormalizePhone(number), outcome.MessageID, message, time.Now().UTC(), status)
	}

	return outcome, nil
}

func (d *DispatchService) markError(logID uuid.UUID) {
	if err := d.logs.UpdateStatus(logID, models.MessageStatusError, nil); err != nil {
		utils.LogError("Failed to mark message as errored", err, nil)
	}
}

// recordOutbound mirrors an outbound message into the lead event log
// and conversation history, delivered or not. Both writes are
// best-effort.
func (d *DispatchService) recordOutbound(leadID uuid.UUID, phone, messageID, message string, at time.Time, status string) {
	eventData, _ := json.Marshal(map[string]interface{}{
		"direction": models.DirectionOutgoing,
		"message":   message,
		"messageId": messageID,
		"timestamp": at.Format(time.RFC3339),
	})
	if err := d.events.Create(&models.LeadEvent{
		LeadID:    leadID,
		EventType: models.EventTypeWhatsAppMessage,
		EventData: eventData,
		Origin:    "whatsapp",
	}); err != nil {
		utils.LogError("Failed to record outbound message event", err, nil)
	}

	exists, err := d.conversations.Exists(leadID, messageID)
	if err != nil || exists {
		return
	}
	if err := d.conversations.Create(&models.WhatsAppConversation{
		LeadID:           leadID,
		MessageID:        messageID,
		PhoneNumber:      whatsapp.NormalizePhone(phone),
		Direction:        models.DirectionOutgoing,
		Content:          message,
		MessageStatus:    status,
		MessageTimestamp: at,
	}); err != nil {
		utils.LogError("Failed to record outbound conversation", err, nil)
	}
}

func (d *DispatchService) findLeadByPhone(number string) *uuid.UUID {
	formats, err := whatsapp.SearchFormats(number)
	if err != nil {
		return nil
	}
	likeFormats := make([]string, len(formats))
	for i, f := range formats {
		likeFormats[i] = "%" + f + "%"
	}
	lead, err := d.leads.FindByPhoneFormats(likeFormats)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.LogError("Failed to resolve lead by phone", err, nil)
		}
		return nil
	}
	return &lead.ID
}
