package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/core/rules"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/models"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/repositories"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/shared/apperrors"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/shared/utils"
)

// ProcessEventInput describes one lead event to run template matching
// for. ProjectID is optional; when absent the lead's most recently
// captured project is used.
type ProcessEventInput struct {
	LeadID    uuid.UUID
	ProjectID *uuid.UUID
	EventType string
	EventData map[string]interface{}
}

// TemplateOutcome reports what happened to one candidate template.
type TemplateOutcome struct {
	TemplateID   uuid.UUID  `json:"template_id"`
	TemplateName string     `json:"template_name"`
	Eligible     bool       `json:"eligible"`
	Reason       string     `json:"reason,omitempty"`
	MessageLogID *uuid.UUID `json:"message_log_id,omitempty"`
}

// Ineligibility reasons.
const (
	ReasonMaxSendsReached = "max_sends_reached"
	ReasonDoNotContact    = "do_not_contact"
	ReasonError           = "error"
)

// ProcessEventResult summarizes one matching run.
type ProcessEventResult struct {
	EventType      string            `json:"event_type"`
	LeadID         uuid.UUID         `json:"lead_id"`
	ProjectID      *uuid.UUID        `json:"project_id,omitempty"`
	TemplatesFound int               `json:"templates_found"`
	EligibleCount  int               `json:"eligible_templates_count"`
	Outcomes       []TemplateOutcome `json:"templates_processed"`
}

// EventService matches lead events against active templates and fires
// the generation-and-dispatch pipeline for each eligible one.
type EventService struct {
	leads      repositories.LeadRepo
	templates  repositories.TemplateRepo
	logs       repositories.MessageLogRepo
	messages   *MessageService
	dispatcher *DispatchService
}

func NewEventService(
	leads repositories.LeadRepo,
	templates repositories.TemplateRepo,
	logs repositories.MessageLogRepo,
	messages *MessageService,
	dispatcher *DispatchService,
) *EventService {
	return &EventService{
		leads:      leads,
		templates:  templates,
		logs:       logs,
		messages:   messages,
		dispatcher: dispatcher,
	}
}

// ProcessEvent runs the full matching pipeline for one event. Template
// failures are collected per template; the run itself only fails on
// validation or storage errors.
func (s *EventService) ProcessEvent(ctx context.Context, input ProcessEventInput) (*ProcessEventResult, error) {
	if input.EventType == "" || input.LeadID == uuid.Nil {
		return nil, apperrors.Validation("event type and lead ID are required")
	}

	lead, err := s.leads.FindByID(input.LeadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("lead %s not found", input.LeadID))
		}
		return nil, err
	}

	projectID := input.ProjectID
	if projectID == nil {
		projectID, err = s.leads.LatestProjectID(lead.ID)
		if err != nil {
			return nil, err
		}
		if projectID == nil {
			utils.LogWarn("No project associated with lead", map[string]interface{}{
				"lead_id": lead.ID.String(),
			})
			return &ProcessEventResult{EventType: input.EventType, LeadID: lead.ID}, nil
		}
	}

	templates, err := s.templates.FindActiveByTrigger(*projectID, input.EventType)
	if err != nil {
		return nil, err
	}

	result := &ProcessEventResult{
		EventType:      input.EventType,
		LeadID:         lead.ID,
		ProjectID:      projectID,
		TemplatesFound: len(templates),
	}
	if len(templates) == 0 {
		return result, nil
	}

	eligible, err := s.MatchTemplates(templates, lead, input.EventData)
	if err != nil {
		return nil, err
	}

	for i := range eligible {
		template := &eligible[i]
		outcome := s.runTemplate(ctx, template, lead, input.EventType, input.EventData)
		if outcome.Eligible {
			result.EligibleCount++
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	return result, nil
}

// MatchTemplates applies the eligibility filters in order: sentiment,
// score range, then trigger conditions. Templates keep their stored
// order so matching stays deterministic.
func (s *EventService) MatchTemplates(
	templates []models.AutomatedMessageTemplate,
	lead *models.Lead,
	eventData map[string]interface{},
) ([]models.AutomatedMessageTemplate, error) {
	var projectIDs []uuid.UUID
	var projectsLoaded bool

	var eligible []models.AutomatedMessageTemplate
	for _, template := range templates {
		if sentiments := template.Sentiments(); len(sentiments) > 0 {
			if !contains(sentiments, lead.Sentiment()) {
				continue
			}
		}

		min, max := template.ScoreBounds()
		if score := lead.Score(); score < min || score > max {
			continue
		}

		conditions, err := rules.ParseConditions(template.TriggerConditions)
		if err != nil {
			utils.LogWarn("Skipping template with invalid conditions", map[string]interface{}{
				"template_id": template.ID.String(),
				"error":       err.Error(),
			})
			continue
		}
		if len(conditions) > 0 && !projectsLoaded {
			projectIDs, err = s.leads.ProjectIDs(lead.ID)
			if err != nil {
				return nil, err
			}
			projectsLoaded = true
		}
		if !rules.Evaluate(conditions, projectIDs, eventData) {
			continue
		}

		eligible = append(eligible, template)
	}
	return eligible, nil
}

// runTemplate enforces the per-template guards and, when they pass,
// generates and dispatches the message.
func (s *EventService) runTemplate(
	ctx context.Context,
	template *models.AutomatedMessageTemplate,
	lead *models.Lead,
	eventType string,
	eventData map[string]interface{},
) TemplateOutcome {
	outcome := TemplateOutcome{TemplateID: template.ID, TemplateName: template.Name}

	count, err := s.logs.CountByTemplateAndLead(template.ID, lead.ID)
	if err != nil {
		outcome.Reason = ReasonError
		return outcome
	}
	if count >= int64(template.MaxSendsPerLead) {
		outcome.Reason = ReasonMaxSendsReached
		return outcome
	}

	if lead.DoNotContact {
		outcome.Reason = ReasonDoNotContact
		return outcome
	}

	logEntry, err := s.messages.GenerateForEvent(ctx, lead, template, eventType, eventData)
	if err != nil {
		utils.LogError("Failed to generate message for template", err, map[string]interface{}{
			"template_id": template.ID.String(),
			"lead_id":     lead.ID.String(),
		})
		outcome.Reason = ReasonError
		return outcome
	}

	outcome.Eligible = true
	outcome.MessageLogID = &logEntry.ID

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, logEntry, lead)
	}
	return outcome
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
