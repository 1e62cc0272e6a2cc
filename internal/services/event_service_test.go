package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/models"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/shared/apperrors"
)

type pipeline struct {
	leads         *fakeLeadRepo
	events        *fakeLeadEventRepo
	templates     *fakeTemplateRepo
	logs          *fakeMessageLogRepo
	conversations *fakeConversationRepo
	projects      *fakeProjectRepo
	generator     *fakeGenerator
	sender        *fakeSender

	messageService *MessageService
	dispatcher     *DispatchService
	eventService   *EventService
}

func newPipeline() *pipeline {
	p := &pipeline{
		leads:         newFakeLeadRepo(),
		events:        &fakeLeadEventRepo{},
		templates:     &fakeTemplateRepo{},
		logs:          &fakeMessageLogRepo{},
		conversations: &fakeConversationRepo{},
		projects:      newFakeProjectRepo(),
		generator:     &fakeGenerator{message: "Olá! Tudo bem?"},
		sender:        &fakeSender{messageID: "wamid-1"},
	}
	p.messageService = NewMessageService(p.generator, p.leads, p.projects, p.conversations, p.logs)
	p.dispatcher = NewDispatchService(p.sender, p.logs, p.events, p.conversations, p.leads)
	p.eventService = NewEventService(p.leads, p.templates, p.logs, p.messageService, p.dispatcher)
	return p
}

func intPtr(v int) *int { return &v }

func (p *pipeline) addLead(mutate func(*models.Lead)) *models.Lead {
	lead := &models.Lead{
		Name:      "Maria Silva",
		Email:     "maria@example.com",
		Phone:     "5511987654321",
		Status:    models.LeadStatusNew,
		LeadScore: intPtr(60),
	}
	if mutate != nil {
		mutate(lead)
	}
	return p.leads.add(lead)
}

func (p *pipeline) addTemplate(projectID uuid.UUID, mutate func(*models.AutomatedMessageTemplate)) *models.AutomatedMessageTemplate {
	template := &models.AutomatedMessageTemplate{
		ProjectID:       projectID,
		Name:            "Boas-vindas",
		TriggerType:     models.EventTypeFormSubmit,
		Instructions:    "Dar boas-vindas ao lead",
		Active:          true,
		MaxSendsPerLead: 1,
	}
	if mutate != nil {
		mutate(template)
	}
	_ = p.templates.Create(template)
	return template
}

func TestProcessEventSendsForEligibleTemplate(t *testing.T) {
	p := newPipeline()
	project := p.projects.add(&models.Project{Name: "Residencial Aurora"})
	lead := p.addLead(nil)
	p.leads.link(lead.ID, project.ID, time.Now())
	p.addTemplate(project.ID, nil)

	result, err := p.eventService.ProcessEvent(context.Background(), ProcessEventInput{
		LeadID:    lead.ID,
		EventType: models.EventTypeFormSubmit,
		EventData: map[string]interface{}{"text": "quero saber mais"},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.TemplatesFound)
	assert.Equal(t, 1, result.EligibleCount)

	// A log was written with lead snapshots and then dispatched.
	require.Len(t, p.logs.logs, 1)
	logEntry := p.logs.logs[0]
	assert.Equal(t, "Olá! Tudo bem?", logEntry.MessageContent)
	assert.Equal(t, 60, logEntry.LeadScoreAtTime)
	assert.Equal(t, models.MessageStatusSent, logEntry.Status)

	require.Len(t, p.sender.sends, 1)
	assert.Equal(t, lead.Phone, p.sender.sends[0].Number)

	// Lead counters were bumped.
	assert.Equal(t, 1, p.leads.recordCounts[lead.ID])
}

func TestProcessEventResolvesLatestProject(t *testing.T) {
	p := newPipeline()
	older := p.projects.add(&models.Project{Name: "Antigo"})
	newer := p.projects.add(&models.Project{Name: "Novo"})
	lead := p.addLead(nil)
	p.leads.link(lead.ID, older.ID, time.Now().Add(-48*time.Hour))
	p.leads.link(lead.ID, newer.ID, time.Now())
	p.addTemplate(newer.ID, nil)

	result, err := p.eventService.ProcessEvent(context.Background(), ProcessEventInput{
		LeadID:    lead.ID,
		EventType: models.EventTypeFormSubmit,
	})

	require.NoError(t, err)
	require.NotNil(t, result.ProjectID)
	assert.Equal(t, newer.ID, *result.ProjectID)
	assert.Equal(t, 1, result.EligibleCount)
}

func TestProcessEventNoProjectIsNoop(t *testing.T) {
	p := newPipeline()
	lead := p.addLead(nil)

	result, err := p.eventService.ProcessEvent(context.Background(), ProcessEventInput{
		LeadID:    lead.ID,
		EventType: models.EventTypeFormSubmit,
	})

	require.NoError(t, err)
	assert.Zero(t, result.TemplatesFound)
	assert.Empty(t, p.logs.logs)
}

func TestProcessEventValidation(t *testing.T) {
	p := newPipeline()

	_, err := p.eventService.ProcessEvent(context.Background(), ProcessEventInput{EventType: "x"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = p.eventService.ProcessEvent(context.Background(), ProcessEventInput{
		LeadID: uuid.New(), EventType: "x",
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMatchTemplatesFilters(t *testing.T) {
	p := newPipeline()
	project := p.projects.add(&models.Project{Name: "Aurora"})
	lead := p.addLead(func(l *models.Lead) {
		l.SentimentStatus = "interessado"
		l.LeadScore = intPtr(40)
	})
	p.leads.link(lead.ID, project.ID, time.Now())

	matching := p.addTemplate(project.ID, nil)
	p.addTemplate(project.ID, func(tpl *models.AutomatedMessageTemplate) {
		tpl.Name = "Sentimento errado"
		tpl.SentimentFilter = datatypes.JSON(`["achou caro"]`)
	})
	p.addTemplate(project.ID, func(tpl *models.AutomatedMessageTemplate) {
		tpl.Name = "Score alto demais"
		tpl.ScoreFilter = datatypes.JSON(`{"min":70}`)
	})
	p.addTemplate(project.ID, func(tpl *models.AutomatedMessageTemplate) {
		tpl.Name = "Outro projeto"
		tpl.TriggerConditions = datatypes.JSON(`[{"field":"project_id","value":"` + uuid.NewString() + `"}]`)
	})

	templates, err := p.templates.FindActiveByTrigger(project.ID, models.EventTypeFormSubmit)
	require.NoError(t, err)
	require.Len(t, templates, 4)

	eligible, err := p.eventService.MatchTemplates(templates, lead, nil)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, matching.ID, eligible[0].ID)
}

func TestMatchTemplatesEventFieldCondition(t *testing.T) {
	p := newPipeline()
	project := p.projects.add(&models.Project{Name: "Aurora"})
	lead := p.addLead(nil)
	p.leads.link(lead.ID, project.ID, time.Now())

	p.addTemplate(project.ID, func(tpl *models.AutomatedMessageTemplate) {
		tpl.TriggerConditions = datatypes.JSON(`[{"field":"event_data.form.source","value":"landing"}]`)
	})

	templates, _ := p.templates.FindActiveByTrigger(project.ID, models.EventTypeFormSubmit)

	eligible, err := p.eventService.MatchTemplates(templates, lead, map[string]interface{}{
		"form": map[string]interface{}{"source": "landing"},
	})
	require.NoError(t, err)
	assert.Len(t, eligible, 1)

	eligible, err = p.eventService.MatchTemplates(templates, lead, map[string]interface{}{
		"form": map[string]interface{}{"source": "ads"},
	})
	require.NoError(t, err)
	assert.Empty(t, eligible)
}

func TestProcessEventSendCap(t *testing.T) {
	p := newPipeline()
	project := p.projects.add(&models.Project{Name: "Aurora"})
	lead := p.addLead(nil)
	p.leads.link(lead.ID, project.ID, time.Now())
	template := p.addTemplate(project.ID, nil)

	input := ProcessEventInput{LeadID: lead.ID, EventType: models.EventTypeFormSubmit}

	first, err := p.eventService.ProcessEvent(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 1, first.EligibleCount)

	second, err := p.eventService.ProcessEvent(context.Background(), input)
	require.NoError(t, err)
	assert.Zero(t, second.EligibleCount)
	require.Len(t, second.Outcomes, 1)
	assert.Equal(t, ReasonMaxSendsReached, second.Outcomes[0].Reason)
	assert.Equal(t, template.ID, second.Outcomes[0].TemplateID)

	// Only the first run sent anything.
	assert.Len(t, p.sender.sends, 1)
}

func TestProcessEventDoNotContact(t *testing.T) {
	p := newPipeline()
	project := p.projects.add(&models.Project{Name: "Aurora"})
	lead := p.addLead(func(l *models.Lead) { l.DoNotContact = true })
	p.leads.link(lead.ID, project.ID, time.Now())
	p.addTemplate(project.ID, nil)

	result, err := p.eventService.ProcessEvent(context.Background(), ProcessEventInput{
		LeadID: lead.ID, EventType: models.EventTypeFormSubmit,
	})

	require.NoError(t, err)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, ReasonDoNotContact, result.Outcomes[0].Reason)
	assert.Empty(t, p.logs.logs)
	assert.Empty(t, p.sender.sends)
}

func TestProcessEventGenerationFailure(t *testing.T) {
	p := newPipeline()
	p.generator.err = &apperrors.GenerationError{Err: errors.New("model unavailable")}

	project := p.projects.add(&models.Project{Name: "Aurora"})
	lead := p.addLead(nil)
	p.leads.link(lead.ID, project.ID, time.Now())
	p.addTemplate(project.ID, nil)

	result, err := p.eventService.ProcessEvent(context.Background(), ProcessEventInput{
		LeadID: lead.ID, EventType: models.EventTypeFormSubmit,
	})

	require.NoError(t, err)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, ReasonError, result.Outcomes[0].Reason)

	// No log row and no send when generation fails.
	assert.Empty(t, p.logs.logs)
	assert.Empty(t, p.sender.sends)
	assert.Zero(t, p.leads.recordCounts[lead.ID])
}

func TestProcessEventDeliveryFailureKeepsLog(t *testing.T) {
	p := newPipeline()
	p.sender.err = errors.New("gateway down")

	project := p.projects.add(&models.Project{Name: "Aurora"})
	lead := p.addLead(nil)
	p.leads.link(lead.ID, project.ID, time.Now())
	p.addTemplate(project.ID, nil)

	result, err := p.eventService.ProcessEvent(context.Background(), ProcessEventInput{
		LeadID: lead.ID, EventType: models.EventTypeFormSubmit,
	})

	// Delivery failure is degraded, not propagated.
	require.NoError(t, err)
	assert.Equal(t, 1, result.EligibleCount)
	require.Len(t, p.logs.logs, 1)
	assert.Equal(t, models.MessageStatusError, p.logs.logs[0].Status)
}
