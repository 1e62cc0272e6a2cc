package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/core/ai"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/models"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/repositories"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/shared/utils"
)

const conversationHistoryLimit = 5

// MessageService generates personalized messages and records them as
// automated message logs. Generation failures always propagate; a
// message that cannot be generated must not leave a log behind.
type MessageService struct {
	generator     ai.Generator
	leads         repositories.LeadRepo
	projects      repositories.ProjectRepo
	conversations repositories.ConversationRepo
	logs          repositories.MessageLogRepo
}

func NewMessageService(
	generator ai.Generator,
	leads repositories.LeadRepo,
	projects repositories.ProjectRepo,
	conversations repositories.ConversationRepo,
	logs repositories.MessageLogRepo,
) *MessageService {
	return &MessageService{
		generator:     generator,
		leads:         leads,
		projects:      projects,
		conversations: conversations,
		logs:          logs,
	}
}

// GenerateForEvent produces a message for an event-triggered template,
// logs it with lead snapshots and bumps the lead's automated counters.
func (s *MessageService) GenerateForEvent(
	ctx context.Context,
	lead *models.Lead,
	template *models.AutomatedMessageTemplate,
	eventType string,
	eventData map[string]interface{},
) (*models.AutomatedMessageLog, error) {
	req := ai.GenerationRequest{
		LeadInfo: s.leadInfo(lead),
		EventContext: &ai.EventContext{
			EventType:      eventType,
			EventData:      eventData,
			MessagePurpose: template.Instructions,
		},
		ConversationHistory:  s.history(lead),
		PersonalizationHints: ai.EventHints(lead.Sentiment()),
	}

	message, err := s.generator.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	rawEvent, err := json.Marshal(eventData)
	if err != nil {
		rawEvent = []byte("{}")
	}
	metadata, _ := json.Marshal(map[string]interface{}{
		"generated_at": time.Now().UTC().Format(time.RFC3339),
	})

	templateID := template.ID
	logEntry := &models.AutomatedMessageLog{
		TemplateID:          &templateID,
		LeadID:              lead.ID,
		MessageContent:      message,
		EventData:           rawEvent,
		Metadata:            metadata,
		LeadScoreAtTime:     lead.Score(),
		LeadSentimentAtTime: lead.Sentiment(),
		Status:              models.MessageStatusPending,
	}
	if err := s.logs.Create(logEntry); err != nil {
		return nil, fmt.Errorf("failed to log generated message: %w", err)
	}

	s.bumpLeadCounters(lead)
	return logEntry, nil
}

// GenerateForInactivity produces a re-engagement message. The log's
// metadata carries the inactivity level so the scanner's cooldown rule
// can find it later.
func (s *MessageService) GenerateForInactivity(
	ctx context.Context,
	lead *models.Lead,
	template *models.AutomatedMessageTemplate,
	level string,
	daysInactive int,
	lastEvent *models.LeadEvent,
) (*models.AutomatedMessageLog, error) {
	var lastInteraction *ai.LastInteraction
	if lastEvent != nil {
		var eventData map[string]interface{}
		_ = json.Unmarshal(lastEvent.EventData, &eventData)
		lastInteraction = &ai.LastInteraction{
			EventType: lastEvent.EventType,
			CreatedAt: lastEvent.CreatedAt.UTC().Format(time.RFC3339),
			EventData: eventData,
		}
	}

	req := ai.GenerationRequest{
		LeadInfo: s.leadInfo(lead),
		InactivityContext: &ai.InactivityContext{
			Level:           level,
			DaysInactive:    daysInactive,
			LastInteraction: lastInteraction,
		},
		ConversationHistory:  s.history(lead),
		PersonalizationHints: ai.InactivityHints(lead.Sentiment()),
	}

	message, err := s.generator.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	metadata, _ := json.Marshal(map[string]interface{}{
		"inactivity_level": level,
		"days_inactive":    daysInactive,
		"generated_at":     time.Now().UTC().Format(time.RFC3339),
	})

	templateID := template.ID
	logEntry := &models.AutomatedMessageLog{
		TemplateID:          &templateID,
		LeadID:              lead.ID,
		MessageContent:      message,
		EventData:           []byte("{}"),
		Metadata:            metadata,
		LeadScoreAtTime:     lead.Score(),
		LeadSentimentAtTime: lead.Sentiment(),
		Status:              models.MessageStatusPending,
	}
	if err := s.logs.Create(logEntry); err != nil {
		return nil, fmt.Errorf("failed to log generated message: %w", err)
	}

	s.bumpLeadCounters(lead)
	return logEntry, nil
}

func (s *MessageService) leadInfo(lead *models.Lead) ai.LeadInfo {
	name := lead.Name
	if name == "" {
		name = "Cliente"
	}
	return ai.LeadInfo{
		ID:              lead.ID.String(),
		Name:            name,
		SentimentStatus: lead.Sentiment(),
		LeadScore:       lead.Score(),
		ProjectName:     s.projectName(lead),
	}
}

func (s *MessageService) projectName(lead *models.Lead) string {
	projectID, err := s.leads.LatestProjectID(lead.ID)
	if err != nil || projectID == nil {
		return ""
	}
	project, err := s.projects.FindByID(*projectID)
	if err != nil {
		return ""
	}
	return project.Name
}

// history returns the most recent conversation turns, oldest first.
func (s *MessageService) history(lead *models.Lead) []ai.ConversationEntry {
	conversations, err := s.conversations.RecentByLead(lead.ID, conversationHistoryLimit)
	if err != nil || len(conversations) == 0 {
		return nil
	}

	entries := make([]ai.ConversationEntry, 0, len(conversations))
	for i := len(conversations) - 1; i >= 0; i-- {
		c := conversations[i]
		entries = append(entries, ai.ConversationEntry{
			Direction: c.Direction,
			Content:   c.Content,
			Timestamp: c.MessageTimestamp.UTC().Format(time.RFC3339),
		})
	}
	return entries
}

func (s *MessageService) bumpLeadCounters(lead *models.Lead) {
	if err := s.leads.RecordAutomatedMessage(lead.ID, time.Now().UTC()); err != nil {
		utils.LogError("Failed to update lead automated message counters", err, map[string]interface{}{
			"lead_id": lead.ID.String(),
		})
	}
}
