package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/core/rules"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/models"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/repositories"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/shared/apperrors"
)

// TemplateInput is the write shape for templates.
type TemplateInput struct {
	ProjectID         uuid.UUID      `json:"project_id"`
	Name              string         `json:"name"`
	Description       string         `json:"description"`
	TriggerType       string         `json:"trigger_type"`
	TriggerConditions datatypes.JSON `json:"trigger_conditions"`
	SentimentFilter   datatypes.JSON `json:"sentiment_filter"`
	ScoreFilter       datatypes.JSON `json:"score_filter"`
	Instructions      string         `json:"instructions"`
	Active            *bool          `json:"active"`
	MaxSendsPerLead   int            `json:"max_sends_per_lead"`
	SendDelayMinutes  int            `json:"send_delay_minutes"`
}

// TemplateService manages automated message templates. Trigger
// conditions are validated on write so the matching engine never sees a
// malformed rule.
type TemplateService struct {
	templates repositories.TemplateRepo
	projects  repositories.ProjectRepo
}

func NewTemplateService(templates repositories.TemplateRepo, projects repositories.ProjectRepo) *TemplateService {
	return &TemplateService{templates: templates, projects: projects}
}

func (s *TemplateService) Create(input TemplateInput) (*models.AutomatedMessageTemplate, error) {
	if err := s.validate(&input); err != nil {
		return nil, err
	}

	template := &models.AutomatedMessageTemplate{
		ProjectID:         input.ProjectID,
		Name:              input.Name,
		Description:       input.Description,
		TriggerType:       input.TriggerType,
		TriggerConditions: input.TriggerConditions,
		SentimentFilter:   input.SentimentFilter,
		ScoreFilter:       input.ScoreFilter,
		Instructions:      input.Instructions,
		Active:            true,
		MaxSendsPerLead:   input.MaxSendsPerLead,
		SendDelayMinutes:  input.SendDelayMinutes,
	}
	if input.Active != nil {
		template.Active = *input.Active
	}
	if template.MaxSendsPerLead <= 0 {
		template.MaxSendsPerLead = 1
	}

	if err := s.templates.Create(template); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return template, nil
}

func (s *TemplateService) Update(id uuid.UUID, input TemplateInput) (*models.AutomatedMessageTemplate, error) {
	template, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(&input); err != nil {
		return nil, err
	}

	template.ProjectID = input.ProjectID
	template.Name = input.Name
	template.Description = input.Description
	template.TriggerType = input.TriggerType
	template.TriggerConditions = input.TriggerConditions
	template.SentimentFilter = input.SentimentFilter
	template.ScoreFilter = input.ScoreFilter
	template.Instructions = input.Instructions
	if input.Active != nil {
		template.Active = *input.Active
	}
	if input.MaxSendsPerLead > 0 {
		template.MaxSendsPerLead = input.MaxSendsPerLead
	}
	template.SendDelayMinutes = input.SendDelayMinutes

	if err := s.templates.Update(template); err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}
	return template, nil
}

func (s *TemplateService) Get(id uuid.UUID) (*models.AutomatedMessageTemplate, error) {
	template, err := s.templates.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("template %s not found", id))
		}
		return nil, err
	}
	return template, nil
}

func (s *TemplateService) ListByProject(projectID uuid.UUID) ([]models.AutomatedMessageTemplate, error) {
	return s.templates.FindByProject(projectID)
}

// Deactivate flips a template inactive instead of deleting it; the
// message logs keep pointing at it.
func (s *TemplateService) Deactivate(id uuid.UUID) (*models.AutomatedMessageTemplate, error) {
	template, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	template.Active = false
	if err := s.templates.Update(template); err != nil {
		return nil, err
	}
	return template, nil
}

func (s *TemplateService) validate(input *TemplateInput) error {
	if input.Name == "" {
		return apperrors.Validation("template name is required")
	}
	if input.TriggerType == "" {
		return apperrors.Validation("trigger_type is required")
	}
	if input.ProjectID == uuid.Nil {
		return apperrors.Validation("project_id is required")
	}

	if _, err := s.projects.FindByID(input.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound(fmt.Sprintf("project %s not found", input.ProjectID))
		}
		return err
	}

	// Inactivity templates carry the object form; everything else must
	// parse as a condition list.
	if input.TriggerType != models.EventTypeInactivity {
		if _, err := rules.ParseConditions(input.TriggerConditions); err != nil {
			return apperrors.Validation(err.Error())
		}
	}
	return nil
}
